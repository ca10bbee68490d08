package health

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCheckTimeout is reported when a check outlives the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned for an unregistered check name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrNilDependency is reported by a checker built without its target.
	ErrNilDependency = errors.New("health: checked dependency is nil")
)

// Status orders outcomes from best to worst, so the overall status of a set of
// checks is its maximum.
type Status int

const (
	StatusHealthy Status = iota
	// StatusDegraded still serves builds, e.g. with caching disabled.
	StatusDegraded
	// StatusUnhealthy means builds can only return fallback strings.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

func newResult(s Status, message string, err error) Result {
	return Result{Status: s, Message: message, Error: err, Timestamp: time.Now()}
}

// Healthy returns a healthy result.
func Healthy(message string) Result { return newResult(StatusHealthy, message, nil) }

// Degraded returns a degraded result.
func Degraded(message string) Result { return newResult(StatusDegraded, message, nil) }

// Unhealthy returns an unhealthy result caused by err.
func Unhealthy(message string, err error) Result { return newResult(StatusUnhealthy, message, err) }

// WithDetails returns r carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker reports on one dependency of the context builders.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc returns a Checker named name that runs fn.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string                     { return f.name }
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
