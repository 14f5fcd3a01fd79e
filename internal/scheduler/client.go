package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

// Client enqueues refresh tasks from the API process.
type Client struct {
	inner *asynq.Client
	queue string
	log   *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	opts, err := asynq.ParseRedisURI(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	return &Client{
		inner: asynq.NewClient(opts),
		queue: cfg.GetAsynqQueueName(),
		log:   log,
	}, nil
}

// EnqueueSearchRefresh schedules a cache refresh. An already-queued task
// for the same cache key is not an error.
func (c *Client) EnqueueSearchRefresh(ctx context.Context, cacheKey, rawQuery string) error {
	task, err := NewSearchRefreshTask(cacheKey, rawQuery)
	if err != nil {
		return err
	}

	info, err := c.inner.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue refresh: %w", err)
	}

	c.log.Info("refresh_enqueued",
		"task_id", info.ID,
		"queue", info.Queue,
	)
	return nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}
