package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a missed key.
//
// A non-empty value is cached even when err is non-nil. Loaders use this to
// cache a substitute value while still reporting why the real one was
// unavailable. Nothing is cached when the load was cancelled.
type LoadFunc func(ctx context.Context) (string, error)

// Result describes how ReadThrough.Get produced its value.
type Result struct {
	Value string

	// Hit is true when the value came from the cache without loading.
	Hit bool

	// Shared is true when one load served more than one concurrent caller.
	Shared bool

	// Err is the error reported by the loader, if any.
	Err error
}

// ReadThrough wraps a Cache with load-on-miss behavior.
type ReadThrough struct {
	cache    Cache
	now      func() time.Time
	coalesce bool
	group    singleflight.Group
}

// ReadThroughOption configures a ReadThrough.
type ReadThroughOption func(*ReadThrough)

// WithLoadClock sets the clock used to timestamp loaded values.
func WithLoadClock(now func() time.Time) ReadThroughOption {
	return func(r *ReadThrough) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCoalescing controls whether concurrent misses for the same key share a
// single load. Enabled by default.
func WithCoalescing(enabled bool) ReadThroughOption {
	return func(r *ReadThrough) {
		r.coalesce = enabled
	}
}

// NewReadThrough creates a read-through wrapper around c.
func NewReadThrough(c Cache, opts ...ReadThroughOption) (*ReadThrough, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	r := &ReadThrough{
		cache:    c,
		now:      time.Now,
		coalesce: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cache returns the wrapped cache.
func (r *ReadThrough) Cache() Cache {
	return r.cache
}

// Get returns the cached value for key, calling load on a miss.
// Within one call the cache read happens before the load, and the load
// before the cache write.
//
// A caller whose ctx is already done gets ctx.Err() and starts no load. A
// coalesced load runs detached from the caller's cancellation so that one
// caller leaving cannot fail the others sharing it; the leaving caller
// returns ctx.Err() without waiting.
func (r *ReadThrough) Get(ctx context.Context, key string, load LoadFunc) Result {
	if cached, ok := r.cache.Get(key); ok {
		return Result{Value: cached, Hit: true}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	if !r.coalesce {
		return r.load(ctx, key, load)
	}

	flight := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		// Another flight may have filled the key between our miss and now.
		if cached, ok := r.cache.Get(key); ok {
			return Result{Value: cached, Hit: true}, nil
		}
		return r.load(flight, key, load), nil
	})

	select {
	case v := <-ch:
		res := v.Val.(Result)
		res.Shared = v.Shared && !res.Hit
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

func (r *ReadThrough) load(ctx context.Context, key string, load LoadFunc) Result {
	value, err := load(ctx)
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		return Result{Err: err}
	}
	if value != "" {
		r.cache.Put(key, value, r.now())
	}
	return Result{Value: value, Err: err}
}
