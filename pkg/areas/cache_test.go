package areas

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingProvider struct {
	calls atomic.Int32
	gate  chan struct{}
	inner Provider
}

func (c *countingProvider) Resolve(ctx context.Context, ref Ref) (*Profile, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.inner.Resolve(ctx, ref)
}

func (c *countingProvider) List(ctx context.Context) ([]Profile, error) {
	return c.inner.List(ctx)
}

type memoryShared struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryShared) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryShared) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func newStatic(t *testing.T) *StaticProvider {
	t.Helper()
	p, err := LoadStaticProvider("")
	require.NoError(t, err)
	return p
}

func TestCachedProviderHitsAndExpiry(t *testing.T) {
	upstream := &countingProvider{inner: newStatic(t)}
	cache := NewCachedProvider(upstream, time.Minute, nil, zaptest.NewLogger(t))
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		profile, err := cache.Resolve(ctx, Ref{ID: "jupiter"})
		require.NoError(t, err)
		assert.Equal(t, "Jupiter", profile.Filters.City)
	}
	assert.Equal(t, int32(1), upstream.calls.Load())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 0, cache.Len())

	_, err := cache.Resolve(ctx, Ref{ID: "jupiter"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), upstream.calls.Load())
}

func TestCachedProviderDoesNotCacheNotFound(t *testing.T) {
	upstream := &countingProvider{inner: newStatic(t)}
	cache := NewCachedProvider(upstream, time.Minute, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := cache.Resolve(context.Background(), Ref{ID: "atlantis"})
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(2), upstream.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestCachedProviderCollapsesConcurrentMisses(t *testing.T) {
	upstream := &countingProvider{inner: newStatic(t), gate: make(chan struct{})}
	cache := NewCachedProvider(upstream, time.Minute, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Resolve(context.Background(), Ref{ID: "alicante"})
			assert.NoError(t, err)
		}()
	}

	// Let the callers pile up behind the first lookup before releasing it.
	require.Eventually(t, func() bool { return upstream.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(upstream.gate)
	wg.Wait()

	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedProviderSharedTier(t *testing.T) {
	shared := &memoryShared{data: map[string][]byte{}}
	first := NewCachedProvider(&countingProvider{inner: newStatic(t)}, time.Minute, shared, nil)
	_, err := first.Resolve(context.Background(), Ref{ID: "jupiter-yacht-club"})
	require.NoError(t, err)

	upstream := &countingProvider{inner: newStatic(t)}
	second := NewCachedProvider(upstream, time.Minute, shared, nil)
	profile, err := second.Resolve(context.Background(), Ref{ID: "jupiter-yacht-club"})
	require.NoError(t, err)
	assert.Equal(t, "Jupiter Yacht Club", profile.Filters.DevelopmentName)
	assert.Equal(t, int32(0), upstream.calls.Load())
}
