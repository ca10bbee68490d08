// Package auth resolves the caller's identity for context builders.
//
// It validates Supabase-style session JWTs, carries the resulting Identity on
// the request context, and exposes it through the SessionProvider interface
// that the builders consume. A missing or invalid session is a normal outcome,
// not an error.
package auth
