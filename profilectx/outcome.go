package profilectx

import (
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/profile"
)

// Outcome is the typed result of one context build.
type Outcome struct {
	// Text is the produced context. It is empty when the build failed before
	// any text existed, and holds the cached fallback when the store had no row.
	Text string

	// Source is observe.SourceHit, SourceStore, SourceShared or SourceFallback.
	Source string

	// Reason explains why real context was unavailable. nil on success.
	Reason error

	// missed is set when the cache was consulted and had no fresh entry.
	missed   bool
	fallback string
}

// Value collapses the outcome into the string handed to prompt assembly.
// It never returns the empty string.
func (o Outcome) Value() string {
	if o.Text != "" {
		return o.Text
	}
	return o.fallback
}

// Fallback reports whether Value is a fallback string.
func (o Outcome) Fallback() bool {
	return profile.IsFallback(o.Value())
}

func failed(fallback string, reason error) Outcome {
	return Outcome{Source: observe.SourceFallback, Reason: reason, fallback: fallback}
}

// result converts the outcome into what the build middleware reports.
func (o Outcome) result() observe.BuildResult {
	res := observe.BuildResult{
		Source:    o.Source,
		CacheMiss: o.missed,
		Fallback:  o.Fallback(),
		Reason:    FailureReason(o.Reason),
		Err:       o.Reason,
		Level:     levelFor(o),
	}
	if res.Fallback && res.Reason == "" {
		res.Reason = ReasonCached
	}
	return res
}

// levelFor picks how loudly an outcome is logged.
func levelFor(o Outcome) observe.LogLevel {
	switch FailureReason(o.Reason) {
	case ReasonStoreError, ReasonFormatting, ReasonUnknown:
		return observe.LevelError
	case ReasonUnauthenticated, ReasonForbidden, ReasonTargetNotFound, ReasonInvalidKey:
		return observe.LevelWarn
	case ReasonNotFound, ReasonCanceled:
		return observe.LevelInfo
	}
	if o.Source == observe.SourceStore {
		return observe.LevelInfo
	}
	return observe.LevelDebug
}
