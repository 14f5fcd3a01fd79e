// Package scheduler queues background cache refreshes over asynq.
package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeSearchRefresh re-runs a search and overwrites its cache entry.
const TypeSearchRefresh = "search:refresh"

// SearchRefreshPayload carries the raw query string of the original search,
// enough to rebuild the full request server-side.
type SearchRefreshPayload struct {
	Query string `json:"query"`
}

// NewSearchRefreshTask builds a refresh task. The task ID is the cache key,
// so a stale entry is refreshed at most once no matter how many requests
// hit it while the refresh is pending.
func NewSearchRefreshTask(cacheKey, rawQuery string) (*asynq.Task, error) {
	payload, err := json.Marshal(SearchRefreshPayload{Query: rawQuery})
	if err != nil {
		return nil, fmt.Errorf("encode refresh payload: %w", err)
	}
	return asynq.NewTask(TypeSearchRefresh, payload,
		asynq.TaskID(cacheKey),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	), nil
}
