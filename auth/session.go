package auth

import (
	"context"
	"time"
)

// Session is the authenticated session a caller presents.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// SessionProvider returns the caller's current session.
//
// A nil session with a nil error means "not signed in"; it is an expected
// outcome. An error means the session could not be determined at all.
type SessionProvider interface {
	CurrentSession(ctx context.Context) (*Session, error)
}

// SessionProviderFunc is an adapter to allow use of ordinary functions as SessionProviders.
type SessionProviderFunc func(ctx context.Context) (*Session, error)

// CurrentSession calls the function.
func (f SessionProviderFunc) CurrentSession(ctx context.Context) (*Session, error) {
	return f(ctx)
}

// ContextSessions reads the session from the Identity that Middleware attached
// to the request context.
type ContextSessions struct{}

// CurrentSession returns the session for the context identity, or nil when the
// identity is missing, anonymous or expired.
func (ContextSessions) CurrentSession(ctx context.Context) (*Session, error) {
	id := IdentityFromContext(ctx)
	if id == nil || id.IsAnonymous() || id.IsExpired() {
		return nil, nil
	}
	return &Session{
		UserID:    id.UserID,
		Email:     id.Email,
		ExpiresAt: id.ExpiresAt,
	}, nil
}

// Ensure ContextSessions implements SessionProvider
var _ SessionProvider = ContextSessions{}
