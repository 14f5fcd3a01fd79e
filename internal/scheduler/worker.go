package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// Refresher re-runs a search from its raw query string and overwrites the
// cache entry. Implemented by the search service.
type Refresher interface {
	Refresh(ctx context.Context, rawQuery string) error
}

// Worker consumes refresh tasks in the background worker process.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger, refresher Refresher) (*Worker, error) {
	opts, err := asynq.ParseRedisURI(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}

	srv := asynq.NewServer(opts, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSearchRefresh, func(ctx context.Context, task *asynq.Task) error {
		var payload SearchRefreshPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("decode refresh payload: %w", err)
		}

		log.Info("refresh_started", "task_id", task.ResultWriter().TaskID())
		if err := refresher.Refresh(ctx, payload.Query); err != nil {
			log.Error("refresh_failed", "error", err.Error())
			return err
		}
		return nil
	})

	return &Worker{srv: srv, mux: mux}, nil
}

// Run blocks until Shutdown is called.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
