package profilectx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/profile"
)

// Build kinds, used as span suffixes and metric attributes.
const (
	KindCreatorProfile        = "creator_profile"
	KindInstagramIntelligence = "instagram_intelligence"
)

const component = "profilectx"

// Builder produces creator context blocks.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: the Build methods never fail; see Outcome.
//   - Ordering: within one call the cache read happens before the store read,
//     and the store read before the cache write.
type Builder struct {
	gate   *AccessGate
	store  profile.Store
	cache  cache.Cache
	loader *cache.ReadThrough
	mw     *observe.Middleware
}

type builderOptions struct {
	now      func() time.Time
	coalesce bool
	mw       *observe.Middleware
}

// Option configures a Builder.
type Option func(*builderOptions)

// WithClock sets the clock used to timestamp cache writes. It should match the
// clock the cache judges freshness with.
func WithClock(now func() time.Time) Option {
	return func(o *builderOptions) { o.now = now }
}

// WithCoalescing controls whether concurrent misses for one key share a store
// read. Enabled by default.
func WithCoalescing(enabled bool) Option {
	return func(o *builderOptions) { o.coalesce = enabled }
}

// WithMiddleware instruments every build with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *builderOptions) { o.mw = mw }
}

// NewBuilder wires a Builder. The store also serves as the gate's owner lookup.
func NewBuilder(sessions auth.SessionProvider, store profile.Store, c cache.Cache, opts ...Option) (*Builder, error) {
	if store == nil || c == nil {
		return nil, ErrNilDependency
	}
	gate, err := NewAccessGate(sessions, store)
	if err != nil {
		return nil, err
	}

	o := builderOptions{now: time.Now, coalesce: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mw == nil {
		o.mw = observe.NewMiddleware(nil, nil, nil)
	}

	loader, err := cache.NewReadThrough(c,
		cache.WithLoadClock(o.now),
		cache.WithCoalescing(o.coalesce),
	)
	if err != nil {
		return nil, err
	}

	return &Builder{
		gate:   gate,
		store:  store,
		cache:  c,
		loader: loader,
		mw:     o.mw,
	}, nil
}

// BuildCreatorProfileContext returns the three-section creator profile block.
// An empty targetID builds the caller's own profile. Any failure yields
// profile.CreatorProfileUnavailable.
func (b *Builder) BuildCreatorProfileContext(ctx context.Context, targetID string) string {
	return b.CreatorProfile(ctx, targetID).Value()
}

// BuildInstagramCreatorIntelligenceContext returns the Instagram intelligence
// block for the caller. An empty username selects the most recent analysis.
// Any failure yields profile.InstagramIntelligenceUnavailable.
func (b *Builder) BuildInstagramCreatorIntelligenceContext(ctx context.Context, username string) string {
	return b.InstagramIntelligence(ctx, username).Value()
}

// CreatorProfile runs the creator profile pipeline and reports how it went.
func (b *Builder) CreatorProfile(ctx context.Context, targetID string) Outcome {
	targetID = strings.TrimSpace(targetID)
	return b.instrument(ctx, KindCreatorProfile, profile.CreatorProfileUnavailable, func(ctx context.Context) Outcome {
		userID, err := b.gate.ResolveAndAuthorize(ctx, targetID)
		if err != nil {
			return failed(profile.CreatorProfileUnavailable, err)
		}

		key := cache.CreatorKey(userID)
		if targetID != "" {
			key = cache.CreatorKey(targetID)
		}

		return b.readThrough(ctx, key, profile.CreatorProfileUnavailable, func(ctx context.Context) (string, error) {
			row, err := b.store.FindCreatorByUserID(ctx, userID)
			if err != nil {
				return profile.CreatorProfileUnavailable, storeFailure(err)
			}
			return render(func() string { return profile.RenderCreatorProfile(row) })
		})
	})
}

// InstagramIntelligence runs the Instagram intelligence pipeline and reports
// how it went.
func (b *Builder) InstagramIntelligence(ctx context.Context, username string) Outcome {
	username = profile.NormalizeUsername(username)
	return b.instrument(ctx, KindInstagramIntelligence, profile.InstagramIntelligenceUnavailable, func(ctx context.Context) Outcome {
		userID, err := b.gate.ResolveAndAuthorize(ctx, "")
		if err != nil {
			return failed(profile.InstagramIntelligenceUnavailable, err)
		}

		// Handles are case-insensitive, so they share one entry.
		key := cache.InstagramKey(userID, strings.ToLower(username))

		return b.readThrough(ctx, key, profile.InstagramIntelligenceUnavailable, func(ctx context.Context) (string, error) {
			row, err := b.store.FindInstagramProfile(ctx, profile.InstagramQuery{UserID: userID, Username: username})
			if err != nil {
				return profile.InstagramIntelligenceUnavailable, storeFailure(err)
			}
			return render(func() string { return profile.RenderInstagramIntelligence(row) })
		})
	})
}

// InvalidateCreatorProfileCache drops the given keys, or every entry when no
// key is given. The next build for a dropped key reads the store.
func (b *Builder) InvalidateCreatorProfileCache(keys ...string) {
	b.cache.Invalidate(keys...)

	ctx := context.Background()
	b.mw.Metrics().RecordInvalidation(ctx, len(keys), len(keys) == 0)
	b.mw.Logger().Info(ctx, "profile context cache invalidated",
		observe.Field{Key: "keys", Value: len(keys)},
		observe.Field{Key: "all", Value: len(keys) == 0},
	)
}

// CacheStats returns a snapshot of the cache.
func (b *Builder) CacheStats() cache.Stats {
	return b.cache.Stats()
}

// Gate returns the builder's access gate.
func (b *Builder) Gate() *AccessGate {
	return b.gate
}

// instrument runs build inside the middleware and converts a panic anywhere
// in the pipeline into a formatting failure.
func (b *Builder) instrument(ctx context.Context, kind, fallback string, build func(context.Context) Outcome) Outcome {
	var out Outcome
	meta := observe.OperationMeta{Kind: kind, Component: component}
	b.mw.Wrap(func(ctx context.Context, _ observe.OperationMeta) observe.BuildResult {
		out = safeBuild(ctx, fallback, build)
		return out.result()
	})(ctx, meta)
	return out
}

func safeBuild(ctx context.Context, fallback string, build func(context.Context) Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(fallback, fmt.Errorf("%w: %v", ErrFormatting, r))
		}
	}()
	return build(ctx)
}

func (b *Builder) readThrough(ctx context.Context, key, fallback string, load cache.LoadFunc) Outcome {
	if err := cache.ValidateKey(key); err != nil {
		return failed(fallback, err)
	}

	res := b.loader.Get(ctx, key, load)
	if res.Err != nil && res.Value == "" && ctx.Err() != nil {
		out := failed(fallback, fmt.Errorf("%w: %w", ErrCallerGone, res.Err))
		out.missed = true
		return out
	}
	out := Outcome{Text: res.Value, Reason: res.Err, missed: !res.Hit, fallback: fallback}
	switch {
	case res.Hit:
		out.Source = observe.SourceHit
	case res.Shared:
		out.Source = observe.SourceShared
	case res.Err != nil:
		out.Source = observe.SourceFallback
	default:
		out.Source = observe.SourceStore
	}
	return out
}

// storeFailure keeps a missing row distinguishable from a failed read.
func storeFailure(err error) error {
	if errors.Is(err, profile.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreRead, err)
}

// render returns no text on panic so that nothing is cached for the key.
func render(fn func() string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrFormatting, r)
		}
	}()
	return fn(), nil
}
