// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog assembles the catalog service: embedded document store,
// resource store, import reconciler, auth provider, metrics, tracing and
// the HTTP router.
//
// The package exposes a small Service interface so the entrypoint and the
// integration tests share one construction path:
//
//	svc, err := catalog.New(catalog.Config{Port: 8000, DataDir: "./data"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ragmarotta/service-catalog/pkg/extensions"
	"github.com/ragmarotta/service-catalog/services/catalog/importer"
	"github.com/ragmarotta/service-catalog/services/catalog/observability"
	"github.com/ragmarotta/service-catalog/services/catalog/routes"
	storage "github.com/ragmarotta/service-catalog/services/catalog/storage/badger"
	"github.com/ragmarotta/service-catalog/services/catalog/store"
)

// Service is the running catalog.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers must
	// not modify the registered routes.
	Router() *gin.Engine

	// Close releases the document store and tracing resources. Run calls
	// it on exit; tests using Router must call it themselves.
	Close()
}

// Config holds catalog configuration. All fields have defaults applied by
// New; the zero value yields a working in-process service with an
// in-memory store only when InMemory is set.
type Config struct {
	// Port is the HTTP server port. Default: 8000.
	Port int

	// DataDir is the directory for the embedded document store.
	// Default: "./data". Ignored when InMemory is true.
	DataDir string

	// InMemory runs the document store without disk persistence.
	// Used by tests.
	InMemory bool

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "localhost:4317". The gRPC client connects lazily, so an
	// unreachable collector does not block startup.
	OTelEndpoint string

	// APITokens is the "token=role,token=role" table for the static auth
	// provider. Empty enables the Nop provider, which grants
	// administrador to every caller. Local development only.
	APITokens string

	// MetricsRegisterer receives the catalog metrics.
	// Default: prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

type service struct {
	config        Config
	router        *gin.Engine
	db            *storage.DB
	store         *store.Store
	reconciler    *importer.Reconciler
	authProvider  extensions.AuthProvider
	metrics       *observability.Metrics
	tracerCleanup func(context.Context)
}

// New creates a catalog Service: applies config defaults, initializes the
// OTLP tracer, opens the document store, builds the auth provider and
// wires the router.
func New(cfg Config) (Service, error) {
	s := &service{config: applyConfigDefaults(cfg)}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	if err := s.initStore(); err != nil {
		s.Close()
		return nil, err
	}

	s.initAuthProvider()
	s.metrics = observability.NewMetrics(s.config.MetricsRegisterer)
	s.initRouter()

	return s, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *service) Run() error {
	defer s.Close()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting catalog server", "port", s.config.Port)

	return s.router.Run(addr)
}

func (s *service) Router() *gin.Engine {
	return s.router
}

// Close shuts down the document store and the tracer. Safe to call more
// than once.
func (s *service) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("document store close error", "error", err)
		}
		s.db = nil
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
		s.tracerCleanup = nil
	}
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "localhost:4317"
	}
	if cfg.MetricsRegisterer == nil {
		cfg.MetricsRegisterer = prometheus.DefaultRegisterer
	}
	return cfg
}

// initTracer sets up the OTLP trace exporter. The gRPC connection is
// insecure, appropriate for internal networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("catalog-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func (s *service) initStore() error {
	storageCfg := storage.DefaultConfig()
	storageCfg.Path = s.config.DataDir
	storageCfg.Logger = slog.Default()
	if s.config.InMemory {
		// Tests; no disk, no GC, no badger log noise.
		storageCfg = storage.InMemoryConfig()
	}

	db, err := storage.Open(storageCfg)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	s.db = db
	s.store = store.New(db)
	s.reconciler = importer.New(s.store)
	return nil
}

func (s *service) initAuthProvider() {
	if s.config.APITokens == "" {
		slog.Warn("CATALOG_API_TOKENS not set, every caller is administrador")
		s.authProvider = &extensions.NopAuthProvider{}
		return
	}
	tokens := extensions.ParseTokenSpec(s.config.APITokens)
	slog.Info("static token auth enabled", "tokens", len(tokens))
	s.authProvider = extensions.NewStaticTokenProvider(tokens)
}

func (s *service) initRouter() {
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("catalog-service"))
	s.router.Use(s.metrics.RequestMetrics())

	routes.SetupRoutes(s.router, s.store, s.reconciler, s.authProvider, s.metrics)
}
