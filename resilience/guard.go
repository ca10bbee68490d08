package resilience

import (
	"context"
	"errors"
	"time"
)

// GuardConfig configures a Guard.
type GuardConfig struct {
	// Timeout bounds each call. Zero disables the bound.
	Timeout time.Duration

	// Breaker configures the circuit. Its IsFailure, if nil, is replaced by
	// one that ignores Expected errors and caller cancellation.
	Breaker CircuitBreakerConfig

	// Expected lists errors that are normal answers, not store failures
	// (e.g. "no such row"). They never trip the circuit.
	Expected []error
}

// Guard runs a call through a circuit breaker and a timeout, in that order,
// so calls rejected by an open circuit never start a timer.
type Guard struct {
	breaker *CircuitBreaker
	timeout *Timeout
}

// NewGuard creates a Guard.
func NewGuard(config GuardConfig) *Guard {
	if config.Breaker.IsFailure == nil {
		expected := config.Expected
		config.Breaker.IsFailure = func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return false
			}
			for _, e := range expected {
				if errors.Is(err, e) {
					return false
				}
			}
			return true
		}
	}
	return &Guard{
		breaker: NewCircuitBreaker(config.Breaker),
		timeout: NewTimeout(config.Timeout),
	}
}

// Execute runs op under the guard.
func (g *Guard) Execute(ctx context.Context, op func(context.Context) error) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.timeout.Execute(ctx, op)
	})
}

// State returns the circuit state.
func (g *Guard) State() State { return g.breaker.State() }

// Do runs op under g and returns its value. A nil guard runs op directly.
func Do[T any](ctx context.Context, g *Guard, op func(context.Context) (T, error)) (T, error) {
	if g == nil {
		return op(ctx)
	}
	// op may outlive Execute after a timeout, so its value is handed over
	// through a channel rather than a shared variable.
	res := make(chan T, 1)
	err := g.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err == nil {
			res <- v
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-res, nil
}
