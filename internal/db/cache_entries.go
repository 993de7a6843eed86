package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-fit/internal/cache"
)

// CacheStore persists cache entries in the cache_entries table. It implements cache.Store.
type CacheStore struct {
	db     *DB
	prefix string
}

var _ cache.Store = (*CacheStore)(nil)

// NewCacheStore returns a cache store whose keys are namespaced by prefix
func NewCacheStore(db *DB, prefix string) *CacheStore {
	return &CacheStore{db: db, prefix: prefix}
}

// Get retrieves a live entry. Expired rows are treated as missing.
func (s *CacheStore) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	var entry cache.Entry
	err := s.db.pool.QueryRow(ctx,
		`SELECT value, expires_at FROM cache_entries
		 WHERE key = $1 AND expires_at > NOW()`,
		s.prefix+key,
	).Scan(&entry.Data, &entry.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{}, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return entry, true, nil
}

// Set upserts an entry expiring after ttl
func (s *CacheStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO cache_entries (key, value, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = $2, expires_at = $3, created_at = NOW()`,
		s.prefix+key, data, time.Now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes expired rows and returns how many were deleted
func (s *CacheStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.pool.Exec(ctx, `DELETE FROM cache_entries WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	return result.RowsAffected(), nil
}
