package auth

import "net/http"

// FailureHook observes authentication failures. It must not write to w.
type FailureHook func(r *http.Request, err error)

// Middleware authenticates each request with authn and attaches the resulting
// Identity to the request context.
//
// Requests without credentials, or with credentials that fail validation,
// continue unauthenticated: downstream code sees no session. onFailure, if
// non-nil, is told about rejected credentials.
func Middleware(authn Authenticator, onFailure FailureHook) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := RequestFromHTTP(r)

			if authn != nil && authn.Supports(ctx, req) {
				result, err := authn.Authenticate(ctx, req)
				switch {
				case err != nil:
					if onFailure != nil {
						onFailure(r, err)
					}
				case result.Authenticated:
					ctx = WithIdentity(ctx, result.Identity)
				default:
					if onFailure != nil {
						onFailure(r, result.Error)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
