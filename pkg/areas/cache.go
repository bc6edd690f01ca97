package areas

import (
	"context"
	"errors"
	"time"

	"github.com/beachesmls/marketreport/pkg/metrics"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const sharedKeyPrefix = "marketreport:area:"

// SharedCache is a cache shared between replicas, typically Redis.
type SharedCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type cacheEntry struct {
	profile Profile
	expires time.Time
}

// CachedProvider memoizes successful resolutions for a fixed TTL. Concurrent
// misses for the same ref share one upstream lookup. Not-found results and
// errors are never cached, so newly loaded areas appear immediately.
type CachedProvider struct {
	next    Provider
	ttl     time.Duration
	entries *xsync.Map[string, cacheEntry]
	group   singleflight.Group
	shared  SharedCache
	logger  *zap.Logger
	now     func() time.Time
}

// NewCachedProvider wraps next. shared may be nil.
func NewCachedProvider(next Provider, ttl time.Duration, shared SharedCache, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		entries: xsync.NewMap[string, cacheEntry](),
		shared:  shared,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *CachedProvider) Resolve(ctx context.Context, ref Ref) (*Profile, error) {
	key := ref.key()
	if entry, ok := c.entries.Load(key); ok && c.now().Before(entry.expires) {
		metrics.AreaCacheResults.WithLabelValues("hit").Inc()
		profile := entry.profile
		return &profile, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A flight for this key may have finished since the check above.
		if entry, ok := c.entries.Load(key); ok && c.now().Before(entry.expires) {
			return entry.profile, nil
		}
		if profile, ok := c.loadShared(ctx, key); ok {
			metrics.AreaCacheResults.WithLabelValues("shared_hit").Inc()
			c.entries.Store(key, cacheEntry{profile: profile, expires: c.now().Add(c.ttl)})
			return profile, nil
		}

		metrics.AreaCacheResults.WithLabelValues("miss").Inc()
		profile, err := c.next.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, cacheEntry{profile: *profile, expires: c.now().Add(c.ttl)})
		c.storeShared(ctx, key, *profile)
		return *profile, nil
	})
	if err != nil {
		return nil, err
	}

	profile := v.(Profile)
	return &profile, nil
}

// List is not cached; it backs an index page that is rarely requested.
func (c *CachedProvider) List(ctx context.Context) ([]Profile, error) {
	return c.next.List(ctx)
}

// Sweep drops expired entries and returns how many were removed.
func (c *CachedProvider) Sweep() int {
	now := c.now()
	removed := 0
	c.entries.Range(func(key string, entry cacheEntry) bool {
		if !now.Before(entry.expires) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of cached entries, expired ones included.
func (c *CachedProvider) Len() int {
	return c.entries.Size()
}

func (c *CachedProvider) loadShared(ctx context.Context, key string) (Profile, bool) {
	if c.shared == nil {
		return Profile{}, false
	}
	var profile Profile
	ok, err := c.shared.GetJSON(ctx, sharedKeyPrefix+key, &profile)
	if err != nil {
		c.logger.Warn("Shared area cache read failed", zap.String("key", key), zap.Error(err))
		return Profile{}, false
	}
	return profile, ok
}

func (c *CachedProvider) storeShared(ctx context.Context, key string, profile Profile) {
	if c.shared == nil {
		return
	}
	if err := c.shared.SetJSON(ctx, sharedKeyPrefix+key, profile, c.ttl); err != nil {
		c.logger.Warn("Shared area cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
