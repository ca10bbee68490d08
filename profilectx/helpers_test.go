package profilectx

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/profile"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// fakeClock is a settable clock shared by the cache and the builder.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingStore wraps a MemoryStore and counts reads per method.
// A non-nil err replaces every answer.
type countingStore struct {
	*profile.MemoryStore
	err error

	creatorReads   atomic.Int64
	ownerReads     atomic.Int64
	instagramReads atomic.Int64
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: profile.NewMemoryStore()}
}

func (s *countingStore) FindCreatorByUserID(ctx context.Context, userID string) (*profile.CreatorProfile, error) {
	s.creatorReads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.FindCreatorByUserID(ctx, userID)
}

func (s *countingStore) FindCreatorOwnerByID(ctx context.Context, creatorID string) (string, error) {
	s.ownerReads.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.MemoryStore.FindCreatorOwnerByID(ctx, creatorID)
}

func (s *countingStore) FindInstagramProfile(ctx context.Context, q profile.InstagramQuery) (*profile.InstagramCreatorProfile, error) {
	s.instagramReads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.FindInstagramProfile(ctx, q)
}

func (s *countingStore) reads() int64 {
	return s.creatorReads.Load() + s.ownerReads.Load() + s.instagramReads.Load()
}

func sessionFor(userID string) auth.SessionProvider {
	return auth.SessionProviderFunc(func(context.Context) (*auth.Session, error) {
		if userID == "" {
			return nil, nil
		}
		return &auth.Session{UserID: userID}, nil
	})
}

// recordingMetrics keeps every build result it is given.
type recordingMetrics struct {
	mu            sync.Mutex
	builds        []observe.BuildResult
	invalidations []int
}

func (m *recordingMetrics) RecordBuild(_ context.Context, _ observe.OperationMeta, _ time.Duration, r observe.BuildResult) {
	m.mu.Lock()
	m.builds = append(m.builds, r)
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordInvalidation(_ context.Context, keys int, _ bool) {
	m.mu.Lock()
	m.invalidations = append(m.invalidations, keys)
	m.mu.Unlock()
}

func (m *recordingMetrics) last() observe.BuildResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds[len(m.builds)-1]
}

type fixture struct {
	store   *countingStore
	cache   *cache.MemoryCache
	clock   *fakeClock
	metrics *recordingMetrics
	builder *Builder
}

func newFixture(t *testing.T, userID string, ttl time.Duration, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:   newCountingStore(),
		clock:   newFakeClock(),
		metrics: &recordingMetrics{},
	}
	f.cache = cache.NewMemoryCache(cache.Policy{TTL: ttl}, cache.WithClock(f.clock.Now))
	mw := observe.NewMiddleware(nil, f.metrics, nil)
	opts = append([]Option{WithClock(f.clock.Now), WithMiddleware(mw)}, opts...)
	b, err := NewBuilder(sessionFor(userID), f.store, f.cache, opts...)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	f.builder = b
	return f
}
