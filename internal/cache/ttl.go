package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
)

// Stats are hit/miss counters of one cache.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Writes int64 `json:"writes"`
}

// TTLCache stores JSON-encoded values of one type under a namespace with a fixed TTL.
// Values are decoded afresh on every read, so cached entries cannot be mutated by callers.
type TTLCache[T any] struct {
	store     Store
	namespace string
	ttl       time.Duration
	logger    *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

// NewTTLCache creates a typed cache. A nil store disables caching.
func NewTTLCache[T any](store Store, namespace string, ttl time.Duration, log *zap.Logger) *TTLCache[T] {
	return &TTLCache[T]{
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.Named(log, "cache").With(zap.String("namespace", namespace)),
	}
}

func (c *TTLCache[T]) key(key string) string {
	return c.namespace + ":" + key
}

// Get returns the cached value for key. Backend and decode errors count as misses.
func (c *TTLCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if c == nil || c.store == nil {
		return zero, false
	}

	entry, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		c.logger.Warn("cache get failed", zap.Error(err))
	}
	if err != nil || !ok {
		c.misses.Add(1)
		return zero, false
	}

	var value T
	if err := json.Unmarshal(entry.Data, &value); err != nil {
		c.logger.Warn("cache entry undecodable", zap.Error(err))
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", zap.String("key", key))
	return value, true
}

// Put stores value under key unless ctx is already done, so abandoned
// requests never write. It reports whether the value was stored.
func (c *TTLCache[T]) Put(ctx context.Context, key string, value T) bool {
	if c == nil || c.store == nil || c.ttl <= 0 {
		return false
	}
	if ctx.Err() != nil {
		c.logger.Debug("cache write skipped for finished request", zap.String("key", key))
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache entry unencodable", zap.Error(err))
		return false
	}
	if err := c.store.Set(ctx, c.key(key), data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
		return false
	}
	c.writes.Add(1)
	return true
}

// Stats returns the counters.
func (c *TTLCache[T]) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Writes: c.writes.Load()}
}

// TTL returns the configured time to live.
func (c *TTLCache[T]) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}
