package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware(t *testing.T) {
	authn := NewJWTAuthenticator(JWTConfig{}, NewStaticKeyProvider(testSecret))

	tests := []struct {
		name         string
		header       string
		wantUser     string
		wantFailures int
	}{
		{
			name: "no credentials",
		},
		{
			name:     "valid token",
			header:   "Bearer " + signToken(t, sessionClaims("user-1", time.Now().Add(time.Hour)), testSecret),
			wantUser: "user-1",
		},
		{
			name:         "invalid token continues anonymous",
			header:       "Bearer garbage",
			wantFailures: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			failures := 0

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
			handler := Middleware(authn, func(*http.Request, error) { failures++ })(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
			if failures != tt.wantFailures {
				t.Errorf("failures = %d, want %d", failures, tt.wantFailures)
			}
		})
	}
}

func TestMiddleware_NilAuthenticator(t *testing.T) {
	called := false
	handler := Middleware(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if IdentityFromContext(r.Context()) != nil {
			t.Error("identity should be absent")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("next handler not called")
	}
}
