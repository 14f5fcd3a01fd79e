package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/fetch"
	"github.com/BaskovKonstantin/EstateFinder/internal/geo"
	"github.com/BaskovKonstantin/EstateFinder/internal/scheduler"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	searchsvc "github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

// The worker consumes cache-refresh tasks: it re-runs searches whose cached
// responses have gone stale and overwrites the Redis entries.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	if cfg.RedisURL == "" {
		panic("REDIS_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.NewRedisStore(cfg)
	if err != nil {
		log.Error("failed to initialize redis cache", "error", err)
		panic("failed to initialize redis cache: " + err.Error())
	}
	defer func() {
		_ = store.Close()
	}()

	scorer, err := scoring.New(cfg)
	if err != nil {
		log.Error("failed to load scoring profiles", "error", err)
		panic("failed to load scoring profiles: " + err.Error())
	}

	fetcher := fetch.New(cfg, log)
	geocoder := geo.NewGeocoder(cfg, log)
	pois := geo.NewPOIClient(cfg, log)

	// Refreshes neither enqueue further refreshes nor write history.
	svc := searchsvc.New(cfg, log, validator.New(), fetcher, geocoder, pois, scorer, store, nil, nil)

	worker, err := scheduler.NewWorker(cfg, log, svc)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping worker")
		worker.Shutdown()
	case err := <-workerErr:
		if err != nil {
			log.Error("worker error", "error", err)
			panic("worker error: " + err.Error())
		}
	}
}
