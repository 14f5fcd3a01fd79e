// Package repository persists search history rows in Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchRow is one search_history row.
type SearchRow struct {
	ID         int64
	CacheKey   string
	Query      string
	Count      int
	CacheHit   bool
	DurationMs int64
	CreatedAt  time.Time
}

// InsertParams are the fields of a new history row.
type InsertParams struct {
	CacheKey   string
	Query      string
	Count      int
	CacheHit   bool
	DurationMs int64
}

// Repository is the persistence contract for search history.
type Repository interface {
	Insert(ctx context.Context, params InsertParams) error
	List(ctx context.Context, limit int) ([]SearchRow, error)
}

// Repo implements the history repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new history repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Insert stores one finished search.
func (r *Repo) Insert(ctx context.Context, params InsertParams) error {
	query := `
		INSERT INTO search_history (cache_key, query, result_count, cache_hit, duration_ms)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query,
		params.CacheKey, params.Query, params.Count, params.CacheHit, params.DurationMs,
	); err != nil {
		return fmt.Errorf("insert search history: %w", err)
	}
	return nil
}

// List returns the most recent searches, newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]SearchRow, error) {
	query := `
		SELECT id, cache_key, query, result_count, cache_hit, duration_ms, created_at
		FROM search_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	defer rows.Close()

	var results []SearchRow
	for rows.Next() {
		var row SearchRow
		if err := rows.Scan(
			&row.ID, &row.CacheKey, &row.Query, &row.Count,
			&row.CacheHit, &row.DurationMs, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search history: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search history: %w", err)
	}
	return results, nil
}
