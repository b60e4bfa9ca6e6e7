// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ragmarotta/service-catalog/pkg/extensions"
	"github.com/ragmarotta/service-catalog/services/catalog/importer"
	"github.com/ragmarotta/service-catalog/services/catalog/observability"
	storage "github.com/ragmarotta/service-catalog/services/catalog/storage/badger"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

func newRBACRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	provider := extensions.NewStaticTokenProvider(map[string]extensions.AuthInfo{
		"admin-token":  {UserID: "u1", Role: extensions.RoleAdministrador},
		"user-token":   {UserID: "u2", Role: extensions.RoleUsuario},
		"viewer-token": {UserID: "u3", Role: extensions.RoleVisualizador},
	})

	st := store.New(db)
	router := gin.New()
	SetupRoutes(router, st, importer.New(st), provider, observability.NewMetrics(prometheus.NewRegistry()))
	return router
}

func request(router *gin.Engine, method, path, token, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestPermissionModel(t *testing.T) {
	someID := store.NewID()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		admin  int
		user   int
		viewer int
	}{
		{"create", http.MethodPost, "/api/resources", `{"name":"a"}`,
			http.StatusCreated, http.StatusCreated, http.StatusForbidden},
		{"list", http.MethodGet, "/api/resources", "",
			http.StatusOK, http.StatusOK, http.StatusOK},
		{"map", http.MethodGet, "/api/resources/map", "",
			http.StatusOK, http.StatusOK, http.StatusOK},
		{"get", http.MethodGet, "/api/resources/" + someID, "",
			http.StatusNotFound, http.StatusNotFound, http.StatusNotFound},
		{"update", http.MethodPut, "/api/resources/" + someID, `{}`,
			http.StatusNotFound, http.StatusNotFound, http.StatusForbidden},
		{"clone", http.MethodPost, "/api/resources/" + someID + "/clone", "",
			http.StatusNotFound, http.StatusNotFound, http.StatusForbidden},
		{"events", http.MethodPost, "/api/resources/" + someID + "/events", `{"event_type":"DEPLOY"}`,
			http.StatusNotFound, http.StatusNotFound, http.StatusForbidden},
		{"timeline", http.MethodGet, "/api/resources/" + someID + "/timeline", "",
			http.StatusNotFound, http.StatusNotFound, http.StatusNotFound},
		{"import", http.MethodPost, "/api/resources/import", `[]`,
			http.StatusOK, http.StatusOK, http.StatusForbidden},
		{"delete", http.MethodDelete, "/api/resources/" + someID, "",
			http.StatusNotFound, http.StatusForbidden, http.StatusForbidden},
		{"bulk delete", http.MethodPost, "/api/resources/delete", `{"ids":[]}`,
			http.StatusOK, http.StatusForbidden, http.StatusForbidden},
		{"meta config", http.MethodGet, "/api/meta/config", "",
			http.StatusOK, http.StatusOK, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Fresh state per role so write operations cannot interfere
			// with each other, e.g. a create colliding on the name.
			for token, want := range map[string]int{
				"admin-token":  tc.admin,
				"user-token":   tc.user,
				"viewer-token": tc.viewer,
			} {
				router := newRBACRouter(t)
				if got := request(router, tc.method, tc.path, token, tc.body); got != want {
					t.Errorf("%s: got %d, want %d", token, got, want)
				}
			}
		})
	}
}

func TestOpenEndpoints(t *testing.T) {
	router := newRBACRouter(t)

	t.Run("health needs no token", func(t *testing.T) {
		if got := request(router, http.MethodGet, "/api/health", "", ""); got != http.StatusOK {
			t.Errorf("status = %d", got)
		}
	})

	t.Run("metrics needs no token", func(t *testing.T) {
		if got := request(router, http.MethodGet, "/metrics", "", ""); got != http.StatusOK {
			t.Errorf("status = %d", got)
		}
	})

	t.Run("everything under /api does", func(t *testing.T) {
		if got := request(router, http.MethodGet, "/api/resources", "", ""); got != http.StatusUnauthorized {
			t.Errorf("status = %d", got)
		}
	})
}
