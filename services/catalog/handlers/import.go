// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	"github.com/ragmarotta/service-catalog/services/catalog/importer"
	"github.com/ragmarotta/service-catalog/services/catalog/observability"
)

// ImportResources handles POST /resources/import. The body is a JSON
// array of import records. Per-record failures land in the summary's
// error list; the endpoint answers 200 even for a partially failed batch.
func ImportResources(rec *importer.Reconciler, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []datatypes.ImportRecord
		if err := c.BindJSON(&records); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		summary := rec.Run(c.Request.Context(), records)

		metrics.ImportRecordsTotal.WithLabelValues("created").Add(float64(summary.Created))
		metrics.ImportRecordsTotal.WithLabelValues("updated").Add(float64(summary.Updated))
		metrics.ImportRecordsTotal.WithLabelValues("failed").Add(float64(len(summary.Errors)))

		c.JSON(http.StatusOK, summary)
	}
}
