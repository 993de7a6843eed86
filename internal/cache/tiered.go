package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
)

// Tiered combines a process-local L1 with an optional shared L2.
// L2 hits are copied into L1 with their original expiry.
type Tiered struct {
	l1     *MemoryStore
	l2     Store
	logger *zap.Logger
}

// NewTiered builds a tiered store. l2 may be nil.
func NewTiered(l1 *MemoryStore, l2 Store, log *zap.Logger) *Tiered {
	if l1 == nil {
		l1 = NewMemoryStore()
	}
	return &Tiered{l1: l1, l2: l2, logger: logger.Named(log, "cache")}
}

// Get implements Store. L2 failures are logged and reported as misses.
func (t *Tiered) Get(ctx context.Context, key string) (Entry, bool, error) {
	if entry, ok, _ := t.l1.Get(ctx, key); ok {
		return entry, true, nil
	}
	if t.l2 == nil {
		return Entry{}, false, nil
	}

	entry, ok, err := t.l2.Get(ctx, key)
	if err != nil {
		t.logger.Warn("L2 cache get failed", zap.Error(err))
		return Entry{}, false, nil
	}
	if !ok {
		return Entry{}, false, nil
	}
	_ = t.l1.SetEntry(key, entry)
	return entry, true, nil
}

// Set implements Store, writing through to both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := t.l1.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	if t.l2 == nil {
		return nil
	}
	return t.l2.Set(ctx, key, data, ttl)
}
