// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the HTTP handlers for the catalog API.
//
// Handlers are thin: they bind and validate the payload, enforce the
// name-uniqueness pre-check where it applies, call into the store or a
// read-side engine, and map sentinel errors to HTTP statuses. Not-found
// is surfaced uniformly whether an id was malformed or simply unmatched.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragmarotta/service-catalog/services/catalog/datatypes"
	"github.com/ragmarotta/service-catalog/services/catalog/graph"
	"github.com/ragmarotta/service-catalog/services/catalog/observability"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

// filterFromQuery reads the list filter query parameters.
func filterFromQuery(c *gin.Context) store.Filter {
	return store.Filter{
		Name: c.Query("name"),
		Tags: c.Query("tags"),
	}
}

// nameTaken reports whether another resource (any resource when ownID is
// empty) already holds the name, case-insensitively. The pre-check is not
// atomic with the subsequent write; concurrent creates can still race.
func nameTaken(c *gin.Context, st *store.Store, name, ownID string) (bool, error) {
	existing, err := st.GetByName(c.Request.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != ownID, nil
}

// CreateResource handles POST /resources.
func CreateResource(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ResourceCreate
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		taken, err := nameTaken(c, st, req.Name, "")
		if err != nil {
			slog.Error("name pre-check failed", "name", req.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "a resource with this name already exists"})
			return
		}

		created, err := st.Create(c.Request.Context(), req)
		if err != nil {
			slog.Error("failed to create resource", "name", req.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
			return
		}
		slog.Info("resource created", "resource_id", created.ID, "name", created.Name)
		c.JSON(http.StatusCreated, created)
	}
}

// ListResources handles GET /resources. The response rows come from the
// filtered set, but parent/child names are derived from the complete
// collection so relationship names stay correct under active filters.
func ListResources(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		all, err := st.List(ctx, store.Filter{})
		if err != nil {
			slog.Error("failed to list resources", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resources"})
			return
		}

		filter := filterFromQuery(c)
		filtered := all
		if filter.Name != "" || filter.Tags != "" {
			filtered, err = st.List(ctx, filter)
			if err != nil {
				slog.Error("failed to list resources", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resources"})
				return
			}
		}

		c.JSON(http.StatusOK, graph.Enrich(all, filtered))
	}
}

// GetServiceMap handles GET /resources/map: the node/edge view of the
// filtered set, with edges leaving the filter suppressed.
func GetServiceMap(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filtered, err := st.List(c.Request.Context(), filterFromQuery(c))
		if err != nil {
			slog.Error("failed to build service map", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build service map"})
			return
		}
		c.JSON(http.StatusOK, graph.BuildMap(filtered))
	}
}

// GetResource handles GET /resources/:id.
func GetResource(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := st.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		if err != nil {
			slog.Error("failed to get resource", "resource_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get resource"})
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// UpdateResource handles PUT /resources/:id with exclude-unset semantics:
// only fields present in the payload change.
func UpdateResource(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var req datatypes.ResourceUpdate
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if req.Name != nil {
			canonical, ok := store.CanonicalID(id)
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
				return
			}
			taken, err := nameTaken(c, st, *req.Name, canonical)
			if err != nil {
				slog.Error("name pre-check failed", "name", *req.Name, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resource"})
				return
			}
			if taken {
				c.JSON(http.StatusConflict, gin.H{"error": "a resource with this name already exists"})
				return
			}
		}

		updated, err := st.Update(c.Request.Context(), id, req)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		if err != nil {
			slog.Error("failed to update resource", "resource_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resource"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// CloneResource handles POST /resources/:id/clone.
func CloneResource(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		clone, err := st.Clone(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		if err != nil {
			slog.Error("failed to clone resource", "resource_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clone resource"})
			return
		}
		slog.Info("resource cloned", "source_id", c.Param("id"), "clone_id", clone.ID)
		c.JSON(http.StatusCreated, clone)
	}
}

// DeleteResource handles DELETE /resources/:id. The integrity sweep and
// the document removal commit together in the store.
func DeleteResource(st *store.Store, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		removed, err := st.Delete(c.Request.Context(), id)
		if err != nil {
			slog.Error("failed to delete resource", "resource_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resource"})
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		metrics.ResourcesDeletedTotal.WithLabelValues("single").Inc()
		c.Status(http.StatusNoContent)
	}
}

// DeleteResources handles POST /resources/delete, the bulk form. An empty
// or fully-malformed id list is a no-op returning deleted=0.
func DeleteResources(st *store.Store, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.DeleteManyRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		deleted, err := st.DeleteMany(c.Request.Context(), req.IDs)
		if err != nil {
			slog.Error("failed to bulk delete resources", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resources"})
			return
		}
		metrics.ResourcesDeletedTotal.WithLabelValues("bulk").Add(float64(deleted))
		c.JSON(http.StatusOK, datatypes.DeleteManyResponse{Deleted: deleted})
	}
}
