// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ragmarotta/service-catalog/pkg/extensions"
)

func newAuthRouter(provider extensions.AuthProvider, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/")
	group.Use(AuthMiddleware(provider))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		info := GetAuthInfo(c)
		c.JSON(http.StatusOK, gin.H{"role": info.Role})
	})
	return router
}

func doGet(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	provider := extensions.NewStaticTokenProvider(map[string]extensions.AuthInfo{
		"admin-token":  {UserID: "u1", Role: extensions.RoleAdministrador},
		"viewer-token": {UserID: "u2", Role: extensions.RoleVisualizador},
	})

	t.Run("valid token passes and exposes AuthInfo", func(t *testing.T) {
		w := doGet(newAuthRouter(provider), "Bearer admin-token")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := doGet(newAuthRouter(provider), "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		w := doGet(newAuthRouter(provider), "Bearer stolen")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		w := doGet(newAuthRouter(provider), "bearer admin-token")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("non-bearer scheme yields an empty token", func(t *testing.T) {
		w := doGet(newAuthRouter(provider), "Basic dXNlcjpwYXNz")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("nop provider accepts anything", func(t *testing.T) {
		w := doGet(newAuthRouter(&extensions.NopAuthProvider{}), "")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	provider := extensions.NewStaticTokenProvider(map[string]extensions.AuthInfo{
		"admin-token":  {UserID: "u1", Role: extensions.RoleAdministrador},
		"viewer-token": {UserID: "u2", Role: extensions.RoleVisualizador},
	})

	t.Run("matching role passes", func(t *testing.T) {
		router := newAuthRouter(provider, extensions.RoleAdministrador)
		w := doGet(router, "Bearer admin-token")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("insufficient role is forbidden", func(t *testing.T) {
		router := newAuthRouter(provider, extensions.RoleAdministrador, extensions.RoleUsuario)
		w := doGet(router, "Bearer viewer-token")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("unauthenticated request is 401 not 403", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/ping", RequireRole(extensions.RoleAdministrador), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := doGet(router, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})
}
