package auth

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator turns request credentials into an Identity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: rejected credentials are reported in AuthResult.Error with a nil
//   error; a non-nil error means the authenticator itself failed.
type Authenticator interface {
	// Name identifies the authenticator in logs.
	Name() string

	// Supports reports whether req carries credentials of this kind.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate validates the credentials in req.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest carries the request headers credentials are read from.
type AuthRequest struct {
	Headers http.Header
}

// RequestFromHTTP wraps the headers of r.
func RequestFromHTTP(r *http.Request) *AuthRequest {
	return &AuthRequest{Headers: r.Header}
}

// GetHeader returns the first value of the named header. Lookup is
// case-insensitive like net/http.
func (r *AuthRequest) GetHeader(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	if v := r.Headers.Get(key); v != "" {
		return v
	}
	// Maps built by hand may use non-canonical keys.
	for k, values := range r.Headers {
		if strings.EqualFold(k, key) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// AuthResult is the outcome of one authentication attempt.
type AuthResult struct {
	Authenticated bool
	Identity      *Identity // set when Authenticated
	Error         error     // set when not Authenticated
}

// AuthSuccess reports accepted credentials.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{Authenticated: true, Identity: identity}
}

// AuthFailure reports rejected credentials.
func AuthFailure(err error) *AuthResult {
	return &AuthResult{Error: err}
}
