package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication and authorization.
var (
	// ErrUnauthenticated means the caller has no usable session.
	ErrUnauthenticated = errors.New("auth: no authenticated session")

	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")

	// ErrForbidden means the caller is known but may not read the resource.
	ErrForbidden = errors.New("auth: access denied")
)

// AuthzError describes a denied read. It matches ErrForbidden with errors.Is.
type AuthzError struct {
	Subject  string // user that was denied
	Resource string // e.g. "creator_profile:<id>"
	Action   string
	Reason   string
	Cause    error
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q resource=%q action=%q reason=%q",
		e.Subject, e.Resource, e.Action, e.Reason)
}

func (e *AuthzError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrForbidden.
func (e *AuthzError) Is(target error) bool { return target == ErrForbidden }
