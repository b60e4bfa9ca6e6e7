// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ResourcesDeletedTotal.WithLabelValues("single").Inc()
	m.ResourcesDeletedTotal.WithLabelValues("bulk").Add(3)
	m.ImportRecordsTotal.WithLabelValues("created").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResourcesDeletedTotal.WithLabelValues("single")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ResourcesDeletedTotal.WithLabelValues("bulk")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ImportRecordsTotal.WithLabelValues("created")))
}

func TestNewMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	router := gin.New()
	router.Use(m.RequestMetrics())
	router.GET("/resources/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve := func(path string) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}
	serve("/resources/abc")
	serve("/resources/def")
	serve("/nope")

	// The route label must be the template, never the raw path.
	matched := m.RequestsTotal.WithLabelValues("/resources/:id", http.MethodGet, "200")
	require.Equal(t, 2.0, testutil.ToFloat64(matched))

	unmatched := m.RequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")
	require.Equal(t, 1.0, testutil.ToFloat64(unmatched))
}
