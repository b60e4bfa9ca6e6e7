// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
	"github.com/ragmarotta/service-catalog/services/catalog/timeline"
)

// AddEvent handles POST /resources/:id/events. The timestamp is assigned
// server-side in UTC; a timestamp in the payload is ignored. The response
// is the updated resource; callers needing the new event read the tail
// of its event list.
func AddEvent(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var req datatypes.EventCreate
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := st.AppendEvent(c.Request.Context(), id, req)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		if err != nil {
			slog.Error("failed to append event", "resource_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to append event"})
			return
		}
		slog.Info("event appended", "resource_id", id, "event_type", req.EventType)
		c.JSON(http.StatusOK, updated)
	}
}

// GetTimeline handles GET /resources/:id/timeline: events in descending
// timestamp order, optionally restricted to the inclusive range
// [start_date, end_date].
func GetTimeline(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		start, err := timeline.ParseBound(c.Query("start_date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		end, err := timeline.ParseBound(c.Query("end_date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}

		r, err := st.Get(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load timeline", "resource_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load timeline"})
			return
		}

		c.JSON(http.StatusOK, timeline.Query(r.Events, start, end))
	}
}
