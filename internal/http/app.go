// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the HTTP server settings.
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks. Optional: without a database
	// or Redis the health endpoint only reports liveness.
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
