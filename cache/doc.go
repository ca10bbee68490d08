// Package cache provides the process-local, TTL-based cache of formatted
// creator profile context.
//
// Entries expire lazily: a stale entry is reported as a miss but stays in the
// map until it is overwritten or invalidated. The cache is a best-effort
// optimization in front of the profile store, never a source of truth.
package cache
