package health

import (
	"context"

	"github.com/jonwraymond/creatorcontext/cache"
)

// Pinger is implemented by stores that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings the profile store.
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a checker for store.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name returns "store".
func (c *StoreChecker) Name() string { return "store" }

// Check is unhealthy when the ping fails. A store that cannot be reached
// still lets builders serve cached values and fallbacks, but new profiles
// will not load.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if c.store == nil {
		return Unhealthy("store not configured", ErrNilDependency)
	}
	if err := c.store.Ping(ctx); err != nil {
		return Unhealthy("store ping failed", err)
	}
	return Healthy("store reachable")
}

// CacheChecker reports the size and freshness of a profile context cache.
type CacheChecker struct {
	cache      cache.Cache
	maxEntries int
}

// NewCacheChecker creates a checker for c. The cache has no eviction, so
// when maxEntries > 0 a larger cache reports Degraded.
func NewCacheChecker(c cache.Cache, maxEntries int) *CacheChecker {
	return &CacheChecker{cache: c, maxEntries: maxEntries}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check reports entry counts in Details.
func (c *CacheChecker) Check(_ context.Context) Result {
	if c.cache == nil {
		return Unhealthy("cache not configured", ErrNilDependency)
	}

	stats := c.cache.Stats()
	expired := 0
	for _, e := range stats.Entries {
		if e.Expired {
			expired++
		}
	}
	details := map[string]any{
		"size":    stats.Size,
		"expired": expired,
		"ttl_ms":  stats.TTL.Milliseconds(),
	}

	if stats.TTL <= 0 {
		return Degraded("caching disabled").WithDetails(details)
	}
	if c.maxEntries > 0 && stats.Size > c.maxEntries {
		details["max_entries"] = c.maxEntries
		return Degraded("cache above size threshold").WithDetails(details)
	}
	return Healthy("cache ok").WithDetails(details)
}

var (
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*CacheChecker)(nil)
)
