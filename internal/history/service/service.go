// Package service records finished searches and serves the history listing.
package service

import (
	"context"
	"time"

	"github.com/BaskovKonstantin/EstateFinder/internal/history/repository"
	"github.com/BaskovKonstantin/EstateFinder/internal/history/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
)

const recordTimeout = 5 * time.Second

type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record stores one finished search. History is an audit trail, not part
// of the search contract: failures are logged and swallowed, and the write
// survives the request context getting cancelled after the response.
func (s *Service) Record(ctx context.Context, cacheKey, query string, count int, cacheHit bool, took time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	err := s.repo.Insert(ctx, repository.InsertParams{
		CacheKey:   cacheKey,
		Query:      query,
		Count:      count,
		CacheHit:   cacheHit,
		DurationMs: took.Milliseconds(),
	})
	if err != nil {
		s.log.Error("history_record_failed", "cache_key", cacheKey, "error", err.Error())
	}
}

// List returns the most recent searches.
func (s *Service) List(ctx context.Context, limit int) ([]transport.SearchSummary, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]transport.SearchSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, transport.SearchSummary{
			ID:         row.ID,
			CacheKey:   row.CacheKey,
			Query:      row.Query,
			Count:      row.Count,
			CacheHit:   row.CacheHit,
			DurationMs: row.DurationMs,
			CreatedAt:  row.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries, nil
}
