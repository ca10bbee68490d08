package cache

import (
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Cache stores formatted profile strings per key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Freshness: Get reports a hit only while now - writtenAt < TTL.
// - Ownership: Stats returns a copy; callers may mutate it freely.
type Cache interface {
	// Get returns the cached value for key. Returns ("", false) on miss or expiry.
	Get(key string) (string, bool)

	// Put stores value under key as written at now, replacing any existing entry.
	Put(key, value string, now time.Time)

	// Invalidate removes the given keys, or every entry when called with no keys.
	Invalidate(keys ...string)

	// Stats returns a snapshot of the cache contents.
	Stats() Stats
}

// Entry is a read-only view of one cached value.
type Entry struct {
	Key       string
	Value     string
	WrittenAt time.Time
	ExpiresAt time.Time
	Expired   bool
}

// Stats is a point-in-time snapshot of the cache.
type Stats struct {
	// Size counts every stored entry, including expired ones not yet replaced.
	Size    int
	TTL     time.Duration
	Entries []Entry
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
