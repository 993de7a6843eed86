package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Expired entries are never returned and
// are removed lazily, by eviction, or by the optional cleanup loop.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int
	now        func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxEntries bounds the number of stored entries (0 means unbounded).
func WithMaxEntries(n int) MemoryOption {
	return func(s *MemoryStore) { s.maxEntries = n }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	if !s.now().Before(entry.ExpiresAt) {
		s.mu.Lock()
		if current, ok := s.entries[key]; ok && current.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	return s.SetEntry(key, Entry{Data: data, ExpiresAt: s.now().Add(ttl)})
}

// SetEntry stores an entry with an explicit expiry.
func (s *MemoryStore) SetEntry(key string, entry Entry) error {
	if !s.now().Before(entry.ExpiresAt) {
		return nil
	}
	stored := Entry{Data: append([]byte(nil), entry.Data...), ExpiresAt: entry.ExpiresAt}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.evictLocked()
	}
	s.entries[key] = stored
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evictLocked makes room for one entry: expired entries first, then the soonest to expire.
func (s *MemoryStore) evictLocked() {
	if s.maxEntries <= 0 || len(s.entries) < s.maxEntries {
		return
	}
	s.removeExpiredLocked()
	for len(s.entries) >= s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, entry := range s.entries {
			if oldestKey == "" || entry.ExpiresAt.Before(oldest) {
				oldestKey, oldest = key, entry.ExpiresAt
			}
		}
		delete(s.entries, oldestKey)
	}
}

func (s *MemoryStore) removeExpiredLocked() int {
	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// RemoveExpired drops every expired entry and returns how many were removed.
func (s *MemoryStore) RemoveExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeExpiredLocked()
}

// StartCleanup removes expired entries every interval until Close is called.
func (s *MemoryStore) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RemoveExpired()
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the cleanup loop.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
