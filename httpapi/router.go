package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/health"
	"github.com/jonwraymond/creatorcontext/observe"
)

// DefaultAdminRole is the JWT role allowed to inspect and clear the cache.
const DefaultAdminRole = "service_role"

// ContextBuilder is the part of profilectx.Builder the API serves.
type ContextBuilder interface {
	BuildCreatorProfileContext(ctx context.Context, targetID string) string
	BuildInstagramCreatorIntelligenceContext(ctx context.Context, username string) string
	InvalidateCreatorProfileCache(keys ...string)
	CacheStats() cache.Stats
}

// Config wires the router.
type Config struct {
	Builder       ContextBuilder
	Authenticator auth.Authenticator
	Health        *health.Aggregator // optional
	Metrics       http.Handler       // defaults to promhttp.Handler()
	Logger        observe.Logger     // defaults to a no-op logger
	AdminRole     string             // defaults to DefaultAdminRole
}

// NewRouter builds the service router.
func NewRouter(cfg Config) chi.Router {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = promhttp.Handler()
	}
	if cfg.AdminRole == "" {
		cfg.AdminRole = DefaultAdminRole
	}

	h := &handlers{builder: cfg.Builder}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	r.Handle("/metrics", cfg.Metrics)
	if cfg.Health != nil {
		r.Mount("/", health.Routes(cfg.Health))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Authenticator, authFailureLogger(cfg.Logger)))

		r.Get("/context/creator", h.creatorContext)
		r.Get("/context/instagram", h.instagramContext)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(cfg.AdminRole))
			r.Get("/cache/stats", h.cacheStats)
			r.Delete("/cache", h.invalidateCache)
		})
	})

	return r
}

func requestLogger(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug(r.Context(), "request completed",
				observe.Field{Key: "method", Value: r.Method},
				observe.Field{Key: "path", Value: r.URL.Path},
				observe.Field{Key: "status", Value: ww.Status()},
				observe.Field{Key: "bytes", Value: ww.BytesWritten()},
				observe.Field{Key: "duration_ms", Value: float64(time.Since(start).Microseconds()) / 1000},
				observe.Field{Key: "request_id", Value: chimiddleware.GetReqID(r.Context())},
			)
		})
	}
}

func authFailureLogger(logger observe.Logger) auth.FailureHook {
	return func(r *http.Request, err error) {
		logger.Warn(r.Context(), "bearer token rejected",
			observe.Field{Key: "path", Value: r.URL.Path},
			observe.Field{Key: "error", Value: err},
		)
	}
}

// requireRole rejects anonymous callers with 401 and callers without role with 403.
func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.IdentityFromContext(r.Context())
			switch {
			case id == nil || id.IsAnonymous() || id.IsExpired():
				writeError(w, http.StatusUnauthorized, "unauthenticated", "a bearer token is required")
			case id.Role != role:
				writeError(w, http.StatusForbidden, "forbidden", "role "+role+" is required")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
