// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// FetcherConfig provides settings for the page fetcher.
type FetcherConfig interface {
	GetSplashURL() string
	GetSplashWait() float64
	GetSplashFallbackThreshold() time.Duration
	GetFetchUserAgent() string
	GetFetchRatePerSec() float64
	GetFetchTimeout() time.Duration
}

// CianConfig provides settings for the Cian catalog crawler.
type CianConfig interface {
	GetCianBaseURL() string
}

// GeoConfig provides settings for geocoding and POI lookup.
type GeoConfig interface {
	GetNominatimURL() string
	GetOverpassURL() string
	GetGeoUserAgent() string
}

// CacheConfig provides settings for the search response cache.
type CacheConfig interface {
	GetRedisURL() string
	GetCacheDir() string
	GetCacheTTL() time.Duration
}

// SchedulerConfig provides settings for the asynq cache-refresh queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// DatabaseConfig provides database connection settings for search history.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsHistoryEnabled() bool
}

// ScoringConfig provides settings for the estate scoring profiles.
type ScoringConfig interface {
	GetWeightsFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	CORSAllowAll bool
	CORSOrigins  []string

	SplashURL               string
	SplashWait              float64
	SplashFallbackThreshold time.Duration
	FetchUserAgent          string
	FetchRatePerSec         float64
	FetchTimeout            time.Duration

	CianBaseURL string

	NominatimURL string
	OverpassURL  string
	GeoUserAgent string

	RedisURL string
	CacheDir string
	CacheTTL time.Duration

	AsynqQueueName   string
	AsynqConcurrency int

	DatabaseURL string

	WeightsFile string
}

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// FetcherConfig implementation
func (c *Config) GetSplashURL() string                      { return c.SplashURL }
func (c *Config) GetSplashWait() float64                    { return c.SplashWait }
func (c *Config) GetSplashFallbackThreshold() time.Duration { return c.SplashFallbackThreshold }
func (c *Config) GetFetchUserAgent() string                 { return c.FetchUserAgent }
func (c *Config) GetFetchRatePerSec() float64               { return c.FetchRatePerSec }
func (c *Config) GetFetchTimeout() time.Duration            { return c.FetchTimeout }

// CianConfig implementation
func (c *Config) GetCianBaseURL() string { return c.CianBaseURL }

// GeoConfig implementation
func (c *Config) GetNominatimURL() string { return c.NominatimURL }
func (c *Config) GetOverpassURL() string  { return c.OverpassURL }
func (c *Config) GetGeoUserAgent() string { return c.GeoUserAgent }

// CacheConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetCacheDir() string        { return c.CacheDir }
func (c *Config) GetCacheTTL() time.Duration { return c.CacheTTL }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) IsHistoryEnabled() bool { return c.DatabaseURL != "" }

// ScoringConfig implementation
func (c *Config) GetWeightsFile() string { return c.WeightsFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		CORSAllowAll: strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "")),

		SplashURL:               getEnv("SPLASH_URL", "http://localhost:8050"),
		SplashWait:              mustFloat(getEnv("SPLASH_WAIT", "1.5")),
		SplashFallbackThreshold: mustDuration(getEnv("SPLASH_FALLBACK_THRESHOLD", "5s")),
		FetchUserAgent:          getEnv("FETCH_USER_AGENT", "Mozilla/5.0 (compatible; EstateFinder/1.0)"),
		FetchRatePerSec:         mustFloat(getEnv("FETCH_RATE_PER_SEC", "2")),
		FetchTimeout:            mustDuration(getEnv("FETCH_TIMEOUT", "30s")),

		CianBaseURL: getEnv("CIAN_BASE_URL", "https://www.cian.ru/cat.php"),

		NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GeoUserAgent: getEnv("GEO_USER_AGENT", "estate-finder-geocoder/1.0"),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheDir: getEnv("CACHE_DIR", "cache"),
		CacheTTL: mustDuration(getEnv("CACHE_TTL", "24h")),

		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		WeightsFile: getEnv("SCORING_WEIGHTS_FILE", ""),
	}

	if len(cfg.CORSOrigins) > 0 && !containsWildcard(cfg.CORSOrigins) {
		cfg.CORSAllowAll = false
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
