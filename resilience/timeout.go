package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds each operation. The operation receives a context carrying
// the deadline and must honor it; Execute returns as soon as the deadline
// passes either way.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout wrapper. Zero or negative d disables it.
func NewTimeout(d time.Duration) *Timeout {
	return &Timeout{d: d}
}

// Duration returns the configured bound.
func (t *Timeout) Duration() time.Duration { return t.d }

// Execute runs op with the timeout applied.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if t == nil || t.d <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(opCtx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return ErrTimeout
		}
		return err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTimeout
	}
}
