// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// CrawlPage logs one fetched catalog or offer page.
func (l *Logger) CrawlPage(kind, url string, ok bool, elapsedMs float64) {
	if ok {
		l.Debug("crawl_page",
			slog.String("kind", kind),
			slog.String("url", url),
			slog.Float64("elapsed_ms", elapsedMs),
		)
		return
	}
	l.Warn("crawl_page_failed",
		slog.String("kind", kind),
		slog.String("url", url),
		slog.Float64("elapsed_ms", elapsedMs),
	)
}

// SearchCompleted logs a finished search run.
func (l *Logger) SearchCompleted(cacheKey string, count int, cached bool, elapsedMs float64) {
	l.Info("search_completed",
		slog.String("cache_key", cacheKey),
		slog.Int("count", count),
		slog.Bool("cached", cached),
		slog.Float64("elapsed_ms", elapsedMs),
	)
}

// UpstreamError logs a failure of an external collaborator (Splash, Nominatim, Overpass).
func (l *Logger) UpstreamError(service string, err error) {
	l.Error("upstream_error",
		slog.String("service", service),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
