package cache

import (
	"sort"
	"sync"
	"time"
)

// MemoryCache is the in-memory Cache implementation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	policy  Policy
	now     func() time.Time
}

type cacheEntry struct {
	value     string
	writtenAt time.Time
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock overrides the clock used to judge freshness.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an empty cache with the given policy.
func NewMemoryCache(policy Policy, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if it was written less than TTL ago.
// Expired entries are left in place.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.policy.Fresh(entry.writtenAt, c.now()) {
		return "", false
	}
	return entry.value, true
}

// Put stores value under key. It is a no-op when the policy disables caching.
func (c *MemoryCache) Put(key, value string, now time.Time) {
	if !c.policy.ShouldCache() {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, writtenAt: now}
	c.mu.Unlock()
}

// Invalidate removes keys, or clears the cache when no keys are given.
// Removing an absent key is a no-op.
func (c *MemoryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(keys) == 0 {
		c.entries = make(map[string]cacheEntry)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Stats returns a copy of the current entries sorted by key.
func (c *MemoryCache) Stats() Stats {
	now := c.now()

	c.mu.RLock()
	entries := make([]Entry, 0, len(c.entries))
	for key, e := range c.entries {
		entries = append(entries, Entry{
			Key:       key,
			Value:     e.value,
			WrittenAt: e.writtenAt,
			ExpiresAt: e.writtenAt.Add(c.policy.TTL),
			Expired:   !c.policy.Fresh(e.writtenAt, now),
		})
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return Stats{
		Size:    len(entries),
		TTL:     c.policy.TTL,
		Entries: entries,
	}
}

// Policy returns the policy the cache was created with.
func (c *MemoryCache) Policy() Policy {
	return c.policy
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
