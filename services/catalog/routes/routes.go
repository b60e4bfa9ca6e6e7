// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ragmarotta/service-catalog/pkg/extensions"
	"github.com/ragmarotta/service-catalog/services/catalog/handlers"
	"github.com/ragmarotta/service-catalog/services/catalog/importer"
	"github.com/ragmarotta/service-catalog/services/catalog/middleware"
	"github.com/ragmarotta/service-catalog/services/catalog/observability"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

// SetupRoutes wires the catalog API. Every route under /api runs through
// the auth middleware and a per-route role gate; the permission model is
// three-tier (administrador / usuario / visualizador) and deletes are
// administrador-only.
func SetupRoutes(router *gin.Engine, st *store.Store, rec *importer.Reconciler,
	provider extensions.AuthProvider, metrics *observability.Metrics) {

	router.GET("/api/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	readRoles := []string{
		extensions.RoleAdministrador,
		extensions.RoleUsuario,
		extensions.RoleVisualizador,
	}
	writeRoles := []string{
		extensions.RoleAdministrador,
		extensions.RoleUsuario,
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(provider))

	resources := api.Group("/resources")
	{
		resources.POST("", middleware.RequireRole(writeRoles...), handlers.CreateResource(st))
		resources.GET("", middleware.RequireRole(readRoles...), handlers.ListResources(st))
		resources.GET("/map", middleware.RequireRole(readRoles...), handlers.GetServiceMap(st))
		resources.POST("/import", middleware.RequireRole(writeRoles...), handlers.ImportResources(rec, metrics))
		resources.POST("/delete", middleware.RequireRole(extensions.RoleAdministrador), handlers.DeleteResources(st, metrics))
		resources.GET("/:id", middleware.RequireRole(readRoles...), handlers.GetResource(st))
		resources.PUT("/:id", middleware.RequireRole(writeRoles...), handlers.UpdateResource(st))
		resources.DELETE("/:id", middleware.RequireRole(extensions.RoleAdministrador), handlers.DeleteResource(st, metrics))
		resources.POST("/:id/clone", middleware.RequireRole(writeRoles...), handlers.CloneResource(st))
		resources.POST("/:id/events", middleware.RequireRole(writeRoles...), handlers.AddEvent(st))
		resources.GET("/:id/timeline", middleware.RequireRole(readRoles...), handlers.GetTimeline(st))
	}

	api.GET("/meta/config", middleware.RequireRole(readRoles...), handlers.GetAppConfig(st))
}
