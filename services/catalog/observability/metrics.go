// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the catalog.
//
// Metrics are exposed via the /metrics endpoint. All metric operations
// are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "catalog"
	httpSubsystem    = "http"
	storeSubsystem   = "store"
)

// Metrics holds the catalog's Prometheus metrics. Create once at startup
// via NewMetrics.
type Metrics struct {
	// RequestsTotal counts HTTP requests by route, method and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency by route and method.
	RequestDurationSeconds *prometheus.HistogramVec

	// ResourcesDeletedTotal counts resources removed, by mode
	// (single, bulk).
	ResourcesDeletedTotal *prometheus.CounterVec

	// ImportRecordsTotal counts import records by result
	// (created, updated, failed).
	ImportRecordsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all catalog metrics on the given
// registerer. Pass prometheus.DefaultRegisterer in production and a
// fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"route", "method"},
		),

		ResourcesDeletedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: storeSubsystem,
				Name:      "resources_deleted_total",
				Help:      "Resources removed from the catalog by delete mode",
			},
			[]string{"mode"},
		),

		ImportRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: storeSubsystem,
				Name:      "import_records_total",
				Help:      "Import records processed by result",
			},
			[]string{"result"},
		),
	}
}

// RequestMetrics returns a Gin middleware recording request counts and
// latency. The route label uses the matched route template, not the raw
// path, to keep cardinality bounded.
func (m *Metrics) RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(
			route, c.Request.Method, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDurationSeconds.WithLabelValues(
			route, c.Request.Method,
		).Observe(time.Since(start).Seconds())
	}
}
