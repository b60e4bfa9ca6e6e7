// Copyright (C) 2025 the service-catalog authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command catalog runs the service-catalog HTTP API.
//
// Configuration is environment-driven:
//
//	CATALOG_PORT                 HTTP port (default 8000)
//	CATALOG_DATA_DIR             document store directory (default ./data)
//	CATALOG_API_TOKENS           "token=role,token=role" auth table
//	CATALOG_LOG_LEVEL            debug, info, warn or error (default info)
//	CATALOG_LOG_DIR              enables JSON file logging when set
//	OTEL_EXPORTER_OTLP_ENDPOINT  trace collector (default localhost:4317)
//	GIN_MODE                     gin mode, e.g. "release"
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/ragmarotta/service-catalog/pkg/logging"
	"github.com/ragmarotta/service-catalog/services/catalog"
)

func main() {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(getEnvString("CATALOG_LOG_LEVEL", "info")),
		LogDir:  getEnvString("CATALOG_LOG_DIR", ""),
		Service: "catalog",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cfg := catalog.Config{
		Port:         getEnvInt("CATALOG_PORT", 8000),
		DataDir:      getEnvString("CATALOG_DATA_DIR", "./data"),
		APITokens:    getEnvString("CATALOG_API_TOKENS", ""),
		OTelEndpoint: getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	svc, err := catalog.New(cfg)
	if err != nil {
		log.Fatalf("failed to create catalog service: %v", err)
	}

	if err := svc.Run(); err != nil {
		log.Fatalf("catalog service exited: %v", err)
	}
}

func getEnvString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer environment variable, using fallback",
			"key", key, "value", value, "fallback", fallback)
		return fallback
	}
	return parsed
}
