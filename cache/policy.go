package cache

import "time"

// DefaultTTLMillis is the default entry lifetime in milliseconds.
const DefaultTTLMillis = 300000

// Policy configures caching behavior.
type Policy struct {
	// TTL is how long an entry stays fresh after it is written.
	// If zero, caching is disabled.
	TTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// TTL: 5 minutes
func DefaultPolicy() Policy {
	return Policy{TTL: DefaultTTLMillis * time.Millisecond}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// PolicyFromMillis builds a policy from a TTL in milliseconds.
// Zero or negative values disable caching.
func PolicyFromMillis(ms int64) Policy {
	if ms <= 0 {
		return NoCachePolicy()
	}
	return Policy{TTL: time.Duration(ms) * time.Millisecond}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.TTL > 0
}

// Fresh reports whether an entry written at writtenAt is still valid at now.
func (p Policy) Fresh(writtenAt, now time.Time) bool {
	return now.Sub(writtenAt) < p.TTL
}
