// Package cache stores finished search responses keyed by the full set of
// search parameters, in Redis or on the local filesystem.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one cached search response.
type Entry struct {
	Count   int              `json:"count"`
	Estates []map[string]any `json:"estates"`
	SavedAt time.Time        `json:"saved_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.SavedAt)
}

// Stale reports whether the entry has passed half its lifetime. Stale
// entries are still served, but a background refresh gets scheduled.
func (e *Entry) Stale(ttl time.Duration) bool {
	return ttl > 0 && e.Age() > ttl/2
}

// Store is a cache backend. Get returns nil without error on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Close() error
}

// KeyParams are the inputs that make two searches equivalent.
type KeyParams struct {
	Variant   map[string]any `json:"variant"`
	MaxPages  int            `json:"max_pages"`
	Radius    int            `json:"radius"`
	Limit     int            `json:"limit"`
	VenueType string         `json:"venue_type"`
}

// Key derives the deterministic cache key: an md5 of the canonical JSON
// form of the parameters. encoding/json sorts map keys, so equal variants
// always produce equal keys regardless of parameter order.
func Key(params KeyParams) (string, error) {
	canonical, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("canonicalize cache key: %w", err)
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}
