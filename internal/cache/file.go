package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BaskovKonstantin/EstateFinder/platform/config"
)

// FileStore keeps search responses as one JSON file per cache key. It is
// the fallback backend for deployments without Redis.
type FileStore struct {
	dir string
	ttl time.Duration
}

func NewFileStore(cfg config.CacheConfig) (*FileStore, error) {
	dir := cfg.GetCacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, ttl: cfg.GetCacheTTL()}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (*Entry, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt file is as good as a miss; it gets overwritten on
		// the next successful search.
		return nil, nil
	}

	if s.ttl > 0 && entry.Age() > s.ttl {
		_ = os.Remove(s.path(key))
		return nil, nil
	}
	return &entry, nil
}

func (s *FileStore) Set(_ context.Context, key string, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	// Write-then-rename so a concurrent reader never sees a partial file.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("commit cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
