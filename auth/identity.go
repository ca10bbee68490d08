package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity represents an authenticated user.
type Identity struct {
	// UserID is the unique user identifier (the token subject).
	UserID string

	// Email is the user's email address, if the token carries one.
	Email string

	// Role is the database role claimed by the token (e.g. "authenticated").
	Role string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims contains the raw claims from the token.
	Claims map[string]any

	// ExpiresAt is when this identity expires.
	ExpiresAt time.Time

	// IssuedAt is when this identity was created.
	IssuedAt time.Time
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous returns true if this identity carries no user.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.UserID == ""
}

// AnonymousIdentity creates a default anonymous identity.
func AnonymousIdentity() *Identity {
	return &Identity{
		Method: AuthMethodAnonymous,
		Claims: make(map[string]any),
	}
}
