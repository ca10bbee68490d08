package profilectx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/profile"
)

const ttl = 300000 * time.Millisecond

const johnDoeProfile = `Section 1 – Creator Profile & Brand
Full Name: John Doe
Age: 25
Location: -
Primary Language: -
Main Focus Platform: -
Other Platforms: -
Niche: -
Target Audience: Millennials, Working Professionals
Brand Words: -
Followers: -
Average Views: -

Section 2 – Content Style & Workflow
Content Formats: Long-form video, Short-form video
Typical Length & Unit: 15 minutes
Inspirations/Competitors: -
Short-Term Goals (3 months): -
Long-Term Goals (1–3 years): -

Section 3 – Growth, Monetization & AI Personalization
Biggest Strengths: -
Biggest Challenges: -
Income Streams: Sponsorships, Affiliate marketing
Brand Types to Avoid: -
AI Assistance Preferences: -
Content Exploration Mode: -`

func putJohnDoe(t *testing.T, s *countingStore, userID string) *profile.CreatorProfile {
	t.Helper()
	row, err := s.PutCreator(&profile.CreatorProfile{
		UserID:              userID,
		FullName:            strPtr("John Doe"),
		Age:                 intPtr(25),
		TargetAudience:      []string{"Millennials", "Working Professionals"},
		ContentFormats:      []string{"Long-form video", "Short-form video"},
		TypicalLengthNumber: intPtr(15),
		TypicalLengthUnit:   strPtr("minutes"),
		IncomeStreams:       []string{"Sponsorships", "Affiliate marketing"},
	})
	if err != nil {
		t.Fatalf("PutCreator() error = %v", err)
	}
	return row
}

func TestBuildCreatorProfileContext_PopulatedRow(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")

	got := f.builder.BuildCreatorProfileContext(context.Background(), "")
	if got != johnDoeProfile {
		t.Errorf("BuildCreatorProfileContext() =\n%s\nwant\n%s", got, johnDoeProfile)
	}
	if r := f.metrics.last(); r.Source != observe.SourceStore || r.Fallback {
		t.Errorf("build result = %+v, want store source", r)
	}
}

func TestBuildCreatorProfileContext_AllNull(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	if _, err := f.store.PutCreator(&profile.CreatorProfile{UserID: "user-1"}); err != nil {
		t.Fatal(err)
	}

	got := f.builder.BuildCreatorProfileContext(context.Background(), "")
	if !strings.Contains(got, "\nTypical Length & Unit: - -\n") {
		t.Errorf("missing two independent placeholders:\n%s", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if line == "" || strings.HasPrefix(line, "Section ") || strings.HasPrefix(line, "Typical Length") {
			continue
		}
		if !strings.HasSuffix(line, ": -") {
			t.Errorf("line %q should render the placeholder", line)
		}
	}
}

func TestBuildCreatorProfileContext_EmptyArrays(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	if _, err := f.store.PutCreator(&profile.CreatorProfile{
		UserID:            "user-1",
		Platforms:         []string{},
		TargetAudience:    []string{},
		ContentFormats:    []string{},
		IncomeStreams:     []string{},
		AIHelpPreferences: []string{},
	}); err != nil {
		t.Fatal(err)
	}

	got := f.builder.BuildCreatorProfileContext(context.Background(), "")
	for _, label := range []string{"Target Audience", "Content Formats", "Income Streams", "AI Assistance Preferences"} {
		if !strings.Contains(got, "\n"+label+": -") {
			t.Errorf("%s should render as -", label)
		}
	}
	if strings.Contains(got, "[]") {
		t.Error("empty arrays must not render as []")
	}
}

func TestBuildCreatorProfileContext_NoRowCachesFallback(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if got := f.builder.BuildCreatorProfileContext(ctx, ""); got != profile.CreatorProfileUnavailable {
			t.Fatalf("call %d = %q, want fallback", i+1, got)
		}
	}
	if n := f.store.creatorReads.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1", n)
	}

	f.metrics.mu.Lock()
	first, second := f.metrics.builds[0], f.metrics.builds[1]
	f.metrics.mu.Unlock()
	if first.Reason != ReasonNotFound || first.Level != observe.LevelInfo {
		t.Errorf("first build = %+v, want not_found at info", first)
	}
	if second.Source != observe.SourceHit || second.Reason != ReasonCached {
		t.Errorf("second build = %+v, want cached fallback hit", second)
	}
}

func TestBuildCreatorProfileContext_StoreErrorCachesFallback(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	f.store.err = errors.New("connection reset")
	ctx := context.Background()

	out := f.builder.CreatorProfile(ctx, "")
	if out.Value() != profile.CreatorProfileUnavailable || !errors.Is(out.Reason, ErrStoreRead) {
		t.Fatalf("outcome = %+v, want fallback with ErrStoreRead", out)
	}
	if r := f.metrics.last(); r.Reason != ReasonStoreError || r.Level != observe.LevelError {
		t.Errorf("build result = %+v, want store_error at error", r)
	}

	f.builder.BuildCreatorProfileContext(ctx, "")
	if n := f.store.creatorReads.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1", n)
	}
}

func TestBuildCreatorProfileContext_NoSession(t *testing.T) {
	f := newFixture(t, "", ttl)
	putJohnDoe(t, f.store, "user-1")

	out := f.builder.CreatorProfile(context.Background(), "")
	if out.Value() != profile.CreatorProfileUnavailable {
		t.Errorf("Value() = %q, want fallback", out.Value())
	}
	if FailureReason(out.Reason) != ReasonUnauthenticated {
		t.Errorf("reason = %v, want unauthenticated", out.Reason)
	}
	if n := f.store.reads(); n != 0 {
		t.Errorf("store reads = %d, want 0", n)
	}
	if f.cache.Stats().Size != 0 {
		t.Error("auth failures must not be cached")
	}
}

func TestBuildCreatorProfileContext_ForeignTarget(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	other := putJohnDoe(t, f.store, "user-2")

	got := f.builder.BuildCreatorProfileContext(context.Background(), other.ID)
	if got != profile.CreatorProfileUnavailable {
		t.Errorf("got %q, want fallback", got)
	}
	if f.store.ownerReads.Load() != 1 || f.store.creatorReads.Load() != 0 {
		t.Errorf("owner reads = %d, creator reads = %d; want 1, 0",
			f.store.ownerReads.Load(), f.store.creatorReads.Load())
	}
	if r := f.metrics.last(); r.Reason != ReasonForbidden || r.Level != observe.LevelWarn {
		t.Errorf("build result = %+v, want forbidden at warn", r)
	}
}

func TestBuildCreatorProfileContext_OwnTargetKeyedByTarget(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	row := putJohnDoe(t, f.store, "user-1")

	if got := f.builder.BuildCreatorProfileContext(context.Background(), row.ID); got != johnDoeProfile {
		t.Errorf("got\n%s", got)
	}
	if _, ok := f.cache.Get(cache.CreatorKey(row.ID)); !ok {
		t.Error("entry should be keyed by the target id")
	}
	if _, ok := f.cache.Get(cache.CreatorKey("user-1")); ok {
		t.Error("target builds must not populate the user key")
	}
}

func TestBuildCreatorProfileContext_Freshness(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	ctx := context.Background()

	f.builder.BuildCreatorProfileContext(ctx, "")
	f.clock.Advance(ttl - time.Millisecond)
	f.builder.BuildCreatorProfileContext(ctx, "")
	if n := f.store.creatorReads.Load(); n != 1 {
		t.Fatalf("reads at T-1ms = %d, want 1", n)
	}

	f.clock.Advance(2 * time.Millisecond)
	f.builder.BuildCreatorProfileContext(ctx, "")
	if n := f.store.creatorReads.Load(); n != 2 {
		t.Errorf("reads at T+1ms = %d, want 2", n)
	}
}

func TestBuildCreatorProfileContext_SequentialAndInvalidate(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	ctx := context.Background()

	first := f.builder.BuildCreatorProfileContext(ctx, "")
	second := f.builder.BuildCreatorProfileContext(ctx, "")
	if first != second {
		t.Error("cached value should equal the first build")
	}
	if n := f.store.creatorReads.Load(); n != 1 {
		t.Fatalf("reads after two calls = %d, want 1", n)
	}

	f.builder.InvalidateCreatorProfileCache()
	if size := f.builder.CacheStats().Size; size != 0 {
		t.Errorf("size after full invalidation = %d, want 0", size)
	}
	f.builder.BuildCreatorProfileContext(ctx, "")
	if n := f.store.creatorReads.Load(); n != 2 {
		t.Errorf("reads after invalidation = %d, want 2", n)
	}

	f.builder.InvalidateCreatorProfileCache("user-1", "absent")
	if _, ok := f.cache.Get("user-1"); ok {
		t.Error("key should be gone after invalidation")
	}
	if got := f.metrics.invalidations; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("invalidations = %v, want [0 2]", got)
	}
}

func TestBuildCreatorProfileContext_CachingDisabled(t *testing.T) {
	f := newFixture(t, "user-1", 0)
	putJohnDoe(t, f.store, "user-1")
	ctx := context.Background()

	f.builder.BuildCreatorProfileContext(ctx, "")
	f.builder.BuildCreatorProfileContext(ctx, "")
	if n := f.store.creatorReads.Load(); n != 2 {
		t.Errorf("reads with TTL 0 = %d, want 2", n)
	}
}

type panickingStore struct{ *countingStore }

func (s panickingStore) FindCreatorByUserID(context.Context, string) (*profile.CreatorProfile, error) {
	s.creatorReads.Add(1)
	panic("corrupt row")
}

func TestBuildCreatorProfileContext_PanicDegrades(t *testing.T) {
	for _, coalesce := range []bool{true, false} {
		store := panickingStore{newCountingStore()}
		c := cache.NewMemoryCache(cache.Policy{TTL: ttl})
		b, err := NewBuilder(sessionFor("user-1"), store, c, WithCoalescing(coalesce))
		if err != nil {
			t.Fatal(err)
		}

		out := b.CreatorProfile(context.Background(), "")
		if out.Value() != profile.CreatorProfileUnavailable || !errors.Is(out.Reason, ErrFormatting) {
			t.Errorf("coalesce=%v: outcome = %+v, want formatting fallback", coalesce, out)
		}
		if c.Stats().Size != 0 {
			t.Errorf("coalesce=%v: a panic must not be cached", coalesce)
		}
	}
}

// blockingStore holds every creator read until release is closed.
type blockingStore struct {
	*countingStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) FindCreatorByUserID(ctx context.Context, userID string) (*profile.CreatorProfile, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.countingStore.FindCreatorByUserID(ctx, userID)
}

func TestBuildCreatorProfileContext_CoalescesColdMisses(t *testing.T) {
	store := &blockingStore{
		countingStore: newCountingStore(),
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	putJohnDoe(t, store.countingStore, "user-1")
	b, err := NewBuilder(sessionFor("user-1"), store, cache.NewMemoryCache(cache.Policy{TTL: ttl}))
	if err != nil {
		t.Fatal(err)
	}

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.BuildCreatorProfileContext(context.Background(), "")
		}(i)
	}

	<-store.started
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	// Late callers find the cache filled, so the count holds either way.
	if n := store.creatorReads.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1", n)
	}
	for i, got := range results {
		if got != johnDoeProfile {
			t.Errorf("caller %d got %q", i, got)
		}
	}
}

func TestBuildInstagramCreatorIntelligenceContext(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	ctx := context.Background()

	if got := f.builder.BuildInstagramCreatorIntelligenceContext(ctx, ""); got != profile.InstagramIntelligenceUnavailable {
		t.Fatalf("no analysis: got %q", got)
	}
	if _, ok := f.cache.Get(cache.InstagramKey("user-1", "")); !ok {
		t.Error("fallback should be cached under instagram_user-1_current")
	}

	_, err := f.store.PutInstagram(&profile.InstagramCreatorProfile{
		UserID:      "user-1",
		Username:    "Ana.Travels",
		Category:    strPtr("Travel"),
		KeyHashtags: []byte(`[{"hashtag":"#travel","category":"niche"}]`),
		CreatedAt:   time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	got := f.builder.BuildInstagramCreatorIntelligenceContext(ctx, "@Ana.Travels")
	header, body, ok := strings.Cut(got, "\n\n")
	if !ok {
		t.Fatalf("missing header/body separation:\n%s", got)
	}
	wantHeader := profile.InstagramBanner + "\nAccount: @Ana.Travels\nAnalyzed: 2026-04-02"
	if header != wantHeader {
		t.Errorf("header = %q, want %q", header, wantHeader)
	}
	if !strings.Contains(body, "Key Hashtags: hashtag: #travel, category: niche") {
		t.Errorf("body missing hashtags:\n%s", body)
	}

	// Handles differing only in case or a leading @ share one entry.
	before := f.store.instagramReads.Load()
	f.builder.BuildInstagramCreatorIntelligenceContext(ctx, "ana.travels")
	if f.store.instagramReads.Load() != before {
		t.Error("normalized handle should hit the cache")
	}
	if _, ok := f.cache.Get(cache.InstagramKey("user-1", "ana.travels")); !ok {
		t.Error("entry should be keyed by the lowercased handle")
	}
}

func TestBuildInstagramCreatorIntelligenceContext_NoSession(t *testing.T) {
	f := newFixture(t, "", ttl)
	if got := f.builder.BuildInstagramCreatorIntelligenceContext(context.Background(), "ana"); got != profile.InstagramIntelligenceUnavailable {
		t.Errorf("got %q, want instagram fallback", got)
	}
	if f.store.reads() != 0 {
		t.Error("store must not be read without a session")
	}
}

func TestCacheStats_Snapshot(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	f.builder.BuildCreatorProfileContext(context.Background(), "")

	stats := f.builder.CacheStats()
	if stats.Size != 1 || stats.Entries[0].Key != "user-1" || stats.Entries[0].Value != johnDoeProfile {
		t.Fatalf("stats = %+v", stats)
	}
	stats.Entries[0].Value = "mutated"
	if again := f.builder.CacheStats(); again.Entries[0].Value != johnDoeProfile {
		t.Error("stats must be a copy")
	}
}

func TestNewBuilder_NilDependencies(t *testing.T) {
	c := cache.NewMemoryCache(cache.DefaultPolicy())
	if _, err := NewBuilder(sessionFor("u"), nil, c); !errors.Is(err, ErrNilDependency) {
		t.Errorf("nil store error = %v", err)
	}
	if _, err := NewBuilder(sessionFor("u"), newCountingStore(), nil); !errors.Is(err, ErrNilDependency) {
		t.Errorf("nil cache error = %v", err)
	}
	if _, err := NewBuilder(nil, newCountingStore(), c); !errors.Is(err, ErrNilDependency) {
		t.Errorf("nil sessions error = %v", err)
	}
}

func TestBuildCreatorProfileContext_CancelledCallerDoesNotCache(t *testing.T) {
	for _, coalesce := range []bool{true, false} {
		t.Run(fmt.Sprintf("coalesce=%v", coalesce), func(t *testing.T) {
			f := newFixture(t, "user-1", ttl, WithCoalescing(coalesce))
			putJohnDoe(t, f.store, "user-1")

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			out := f.builder.CreatorProfile(ctx, "")
			if out.Value() != profile.CreatorProfileUnavailable {
				t.Errorf("cancelled Value() = %q, want fallback", out.Value())
			}
			if !errors.Is(out.Reason, ErrCallerGone) || FailureReason(out.Reason) != ReasonCanceled {
				t.Errorf("Reason = %v (%s), want ErrCallerGone", out.Reason, FailureReason(out.Reason))
			}
			if size := f.builder.CacheStats().Size; size != 0 {
				t.Fatalf("cache size after cancelled build = %d, want 0", size)
			}

			if got := f.builder.BuildCreatorProfileContext(context.Background(), ""); got != johnDoeProfile {
				t.Errorf("healthy build after cancellation = %q", got)
			}
			if n := f.store.creatorReads.Load(); n != 1 {
				t.Errorf("store reads = %d, want 1", n)
			}
		})
	}
}

func TestBuildCreatorProfileContext_StoreCancellationNotCached(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	f.store.err = fmt.Errorf("query: %w", context.Canceled)

	out := f.builder.CreatorProfile(context.Background(), "")
	if out.Value() != profile.CreatorProfileUnavailable || FailureReason(out.Reason) != ReasonCanceled {
		t.Errorf("outcome = %q / %v, want uncached fallback", out.Value(), out.Reason)
	}
	if size := f.builder.CacheStats().Size; size != 0 {
		t.Fatalf("cache size = %d, want 0", size)
	}

	f.store.err = nil
	if got := f.builder.BuildCreatorProfileContext(context.Background(), ""); got != johnDoeProfile {
		t.Errorf("build after recovery = %q", got)
	}
}

func TestBuildCreatorProfileContext_CallerLeavingSharedLoad(t *testing.T) {
	store := &blockingStore{
		countingStore: newCountingStore(),
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	putJohnDoe(t, store.countingStore, "user-1")
	c := cache.NewMemoryCache(cache.Policy{TTL: ttl})
	b, err := NewBuilder(sessionFor("user-1"), store, c)
	if err != nil {
		t.Fatal(err)
	}

	leaving, cancel := context.WithCancel(context.Background())
	leaverDone := make(chan Outcome, 1)
	go func() { leaverDone <- b.CreatorProfile(leaving, "") }()
	<-store.started

	stayerDone := make(chan string, 1)
	go func() { stayerDone <- b.BuildCreatorProfileContext(context.Background(), "") }()
	// Let the second caller join the load in flight.
	time.Sleep(20 * time.Millisecond)

	cancel()
	left := <-leaverDone
	if !errors.Is(left.Reason, ErrCallerGone) || left.Value() != profile.CreatorProfileUnavailable {
		t.Errorf("leaving caller = %q / %v, want fallback with ErrCallerGone", left.Value(), left.Reason)
	}

	close(store.release)
	if got := <-stayerDone; got != johnDoeProfile {
		t.Errorf("remaining caller got %q", got)
	}
	if got, ok := c.Get("user-1"); !ok || got != johnDoeProfile {
		t.Errorf("cached = %q, %v, want the real profile", got, ok)
	}
	if n := store.creatorReads.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1", n)
	}
}

func TestBuild_CacheMissOnlyWhenCacheConsulted(t *testing.T) {
	f := newFixture(t, "user-1", ttl)
	putJohnDoe(t, f.store, "user-1")
	ctx := context.Background()

	f.builder.BuildCreatorProfileContext(ctx, "")
	if r := f.metrics.last(); !r.CacheMiss || r.Source != observe.SourceStore {
		t.Errorf("cold build = %+v, want a store miss", r)
	}

	f.builder.BuildCreatorProfileContext(ctx, "")
	if r := f.metrics.last(); r.CacheMiss || r.Source != observe.SourceHit {
		t.Errorf("warm build = %+v, want a hit", r)
	}

	f.builder.BuildInstagramCreatorIntelligenceContext(ctx, "nobody")
	if r := f.metrics.last(); !r.CacheMiss || r.Reason != ReasonNotFound {
		t.Errorf("missing row = %+v, want a miss with not_found", r)
	}

	anon := newFixture(t, "", ttl)
	anon.builder.BuildCreatorProfileContext(ctx, "")
	if r := anon.metrics.last(); r.CacheMiss || r.Reason != ReasonUnauthenticated {
		t.Errorf("rejected build = %+v, want no cache miss", r)
	}
}
