package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/types"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("backend down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

func TestTTLCache_RoundTripAndStats(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[[]types.Requirement](NewMemoryStore(), NamespaceRequirements, time.Hour, zap.NewNop())

	_, ok := c.Get(ctx, "job")
	assert.False(t, ok)

	reqs := []types.Requirement{{Text: "Go", Category: types.CategoryRequired, Importance: types.ImportanceHigh, Type: types.TypeTechnicalSkill}}
	assert.True(t, c.Put(ctx, "job", reqs))

	got, ok := c.Get(ctx, "job")
	require.True(t, ok)
	assert.Equal(t, reqs, got)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Writes: 1}, c.Stats())
}

func TestTTLCache_ReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[types.StructuredResume](NewMemoryStore(), NamespaceResume, time.Hour, zap.NewNop())
	require.True(t, c.Put(ctx, "r", types.StructuredResume{Skills: []string{"Go"}}))

	first, ok := c.Get(ctx, "r")
	require.True(t, ok)
	first.Skills[0] = "mutated"

	second, ok := c.Get(ctx, "r")
	require.True(t, ok)
	assert.Equal(t, []string{"Go"}, second.Skills)
}

func TestTTLCache_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewTTLCache[string](store, "a", time.Hour, nil)
	b := NewTTLCache[string](store, "b", time.Hour, nil)

	require.True(t, a.Put(ctx, "key", "from-a"))
	_, ok := b.Get(ctx, "key")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewTTLCache[string](NewMemoryStore(WithClock(clock.Now)), "x", time.Hour, nil)
	require.True(t, c.Put(ctx, "k", "v"))

	clock.Advance(59 * time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTTLCache_CancelledContextDoesNotWrite(t *testing.T) {
	store := NewMemoryStore()
	c := NewTTLCache[string](store, "x", time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, c.Put(ctx, "k", "v"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, int64(0), c.Stats().Writes)
}

func TestTTLCache_DisabledAndFailingStores(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		cache *TTLCache[string]
	}{
		{name: "nil store", cache: NewTTLCache[string](nil, "x", time.Hour, nil)},
		{name: "failing store", cache: NewTTLCache[string](failingStore{}, "x", time.Hour, nil)},
		{name: "zero ttl", cache: NewTTLCache[string](NewMemoryStore(), "x", 0, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.cache.Put(ctx, "k", "v"))
			_, ok := tt.cache.Get(ctx, "k")
			assert.False(t, ok)
		})
	}
}

func TestTTLCache_UndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "x:k", []byte("{not json"), time.Hour))

	c := NewTTLCache[string](store, "x", time.Hour, nil)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestTTLCache_ConcurrentWritersLastWins(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[int](NewMemoryStore(), "x", time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			c.Put(ctx, "k", v)
		}(i)
	}
	wg.Wait()

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.GreaterOrEqual(t, got, 0)
	assert.Less(t, got, 32)
}

func TestCaches_DefaultsAndStats(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Hour, cfg.ResumeTTL)
	assert.Equal(t, 24*time.Hour, cfg.RequirementsTTL)
	assert.Equal(t, time.Hour, cfg.AnalysisTTL)

	caches := New(NewMemoryStore(), cfg, nil)
	assert.Equal(t, 24*time.Hour, caches.Requirements.TTL())

	stats := caches.Stats()
	assert.Len(t, stats, 3)
	assert.Contains(t, stats, NamespaceAnalysis)
}
