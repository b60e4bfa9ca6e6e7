// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service Catalog API is running",
	})
}

// GetAppConfig handles GET /meta/config: the recommended event vocabulary
// plus the tag keys currently in use, for client-side autocomplete.
func GetAppConfig(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tagKeys, err := st.DistinctTagKeys(c.Request.Context())
		if err != nil {
			slog.Error("failed to collect tag keys", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load configuration"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"event_types": datatypes.EventTypes,
			"tag_keys":    tagKeys,
		})
	}
}
