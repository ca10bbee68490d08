package profilectx

import (
	"context"
	"errors"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/profile"
)

// Sentinel errors reported through Outcome.Reason.
var (
	// ErrTargetNotFound means an explicit target id matched no creator profile.
	ErrTargetNotFound = errors.New("profilectx: target not found")

	// ErrStoreRead wraps any store failure other than a missing row.
	ErrStoreRead = errors.New("profilectx: store read failed")

	// ErrFormatting means rendering a row panicked.
	ErrFormatting = errors.New("profilectx: formatting failed")

	// ErrCallerGone means the caller's context ended before a value was
	// produced. Nothing is cached for it.
	ErrCallerGone = errors.New("profilectx: caller context ended")

	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("profilectx: nil dependency")
)

// Failure reasons used as log fields and metric attributes.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
	ReasonTargetNotFound  = "target_not_found"
	ReasonNotFound        = "not_found"
	ReasonStoreError      = "store_error"
	ReasonFormatting      = "formatting"
	ReasonInvalidKey      = "invalid_key"
	ReasonCanceled        = "canceled"
	ReasonCached          = "cached"
	ReasonUnknown         = "unknown"
)

// FailureReason maps err to a stable label. A nil error has no reason.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrUnauthenticated):
		return ReasonUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		return ReasonForbidden
	case errors.Is(err, ErrTargetNotFound):
		return ReasonTargetNotFound
	case errors.Is(err, ErrCallerGone), errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrFormatting):
		return ReasonFormatting
	case errors.Is(err, ErrStoreRead):
		return ReasonStoreError
	case errors.Is(err, profile.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, cache.ErrInvalidKey), errors.Is(err, cache.ErrKeyTooLong):
		return ReasonInvalidKey
	default:
		return ReasonUnknown
	}
}
