package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/fetch"
	"github.com/BaskovKonstantin/EstateFinder/internal/geo"
	"github.com/BaskovKonstantin/EstateFinder/internal/history"
	apphttp "github.com/BaskovKonstantin/EstateFinder/internal/http"
	"github.com/BaskovKonstantin/EstateFinder/internal/http/router"
	"github.com/BaskovKonstantin/EstateFinder/internal/scheduler"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	"github.com/BaskovKonstantin/EstateFinder/internal/search"
	searchsvc "github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/internal/web"
	"github.com/BaskovKonstantin/EstateFinder/migrations"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/db"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Postgres is optional: without it the history endpoint is disabled and
	// the health check only reports liveness.
	var pool *pgxpool.Pool
	var health apphttp.HealthChecker
	var historyModule *history.Module
	if cfg.IsHistoryEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")

		if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
			p, err := db.NewPool(ctx, cfg)
			if err != nil {
				return err
			}
			pool = p
			return nil
		}); err != nil {
			log.Error("failed to connect to database", "error", err)
			panic("failed to connect to database: " + err.Error())
		}
		defer pool.Close()
		log.Info("database connection established")

		health = db.NewPoolAdapter(pool)
		historyModule = history.NewModule(pool, log)
	} else {
		log.Warn("DATABASE_URL not configured; search history disabled")
	}

	// Cache backend: Redis when configured, local files otherwise.
	store := newStore(ctx, cfg, log)
	defer func() {
		_ = store.Close()
	}()

	// Background refreshes need the asynq queue, which needs Redis.
	var enqueuer searchsvc.RefreshEnqueuer
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg, log)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
		} else {
			enqueuer = client
			defer func() {
				_ = client.Close()
			}()
		}
	} else {
		log.Warn("REDIS_URL not configured; background cache refreshes disabled")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	scorer, err := scoring.New(cfg)
	if err != nil {
		log.Error("failed to load scoring profiles", "error", err)
		panic("failed to load scoring profiles: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	fetcher := fetch.New(cfg, log)
	geocoder := geo.NewGeocoder(cfg, log)
	pois := geo.NewPOIClient(cfg, log)

	var recorder searchsvc.HistoryRecorder
	if historyModule != nil {
		recorder = historyModule.Service()
	}

	svc := searchsvc.New(cfg, log, val, fetcher, geocoder, pois, scorer, store, enqueuer, recorder)

	modules := []apphttp.Module{
		search.NewModule(svc, val),
		web.NewModule(),
	}
	if historyModule != nil {
		modules = append(modules, historyModule)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  health,
		Modules: modules,
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newStore picks the cache backend. A misconfigured Redis degrades to the
// file cache rather than taking the whole service down.
func newStore(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Store {
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err = redisStore.Ping(pingCtx); err == nil {
				log.Info("redis cache initialized")
				return redisStore
			}
			_ = redisStore.Close()
		}
		log.Error("redis cache unavailable, falling back to file cache", "error", err)
	}

	fileStore, err := cache.NewFileStore(cfg)
	if err != nil {
		log.Error("failed to initialize file cache", "error", err)
		panic("failed to initialize file cache: " + err.Error())
	}
	log.Info("file cache initialized", "dir", cfg.CacheDir)
	return fileStore
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn(name+" failed, retrying", "attempt", attempt, "error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
