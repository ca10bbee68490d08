package resilience

import "errors"

var (
	// ErrCircuitOpen is returned without calling the store while the circuit
	// is open or its single half-open probe is in flight.
	ErrCircuitOpen = errors.New("resilience: store circuit open")

	// ErrTimeout is returned when a call outlives the guard's own deadline.
	// A cancelled parent context is reported as ctx.Err() instead.
	ErrTimeout = errors.New("resilience: store call timed out")
)
