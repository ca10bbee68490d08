// Package resilience guards calls to the profile store.
//
// A CircuitBreaker stops sending reads to a store that keeps failing and lets
// a probe through after ResetTimeout; a Timeout bounds each read. Guard
// composes both. A read rejected by an open circuit fails fast with
// ErrCircuitOpen, which callers treat like any other store error.
//
// There is deliberately no retry: every cache miss costs at most one store
// read.
package resilience
