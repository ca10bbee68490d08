// Command creatorctxd serves creator profile context over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/config"
	"github.com/jonwraymond/creatorcontext/health"
	"github.com/jonwraymond/creatorcontext/httpapi"
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/postgres"
	"github.com/jonwraymond/creatorcontext/profile"
	"github.com/jonwraymond/creatorcontext/profilectx"
	"github.com/jonwraymond/creatorcontext/resilience"
)

func main() {
	configPath := flag.String("config", "configs/creatorctxd.yaml", "path to the YAML config file (optional)")
	migrate := flag.Bool("migrate", false, "apply the embedded schema before serving (local databases only)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrate); err != nil {
		log.Fatalf("creatorctxd: %v", err)
	}
}

func run(ctx context.Context, configPath string, migrate bool) error {
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obs, err := observe.NewObserver(ctx, cfg.Observe())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Printf("creatorctxd: telemetry shutdown: %v", err)
		}
	}()
	logger := obs.Logger()

	store, closeStore, err := openStore(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	guarded := profile.NewGuardedStore(store, resilience.GuardConfig{
		Timeout: cfg.StoreTimeout,
		Breaker: resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.BreakerMaxFailures,
			ResetTimeout: cfg.BreakerReset,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "store circuit changed state",
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		},
	})

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("init build middleware: %w", err)
	}

	profileCache := cache.NewMemoryCache(cfg.CachePolicy())
	if err := observe.RegisterCacheGauges(obs.Meter(), cacheSizer(profileCache)); err != nil {
		return fmt.Errorf("register cache gauges: %w", err)
	}
	builder, err := profilectx.NewBuilder(auth.ContextSessions{}, guarded, profileCache,
		profilectx.WithCoalescing(cfg.CacheCoalesce),
		profilectx.WithMiddleware(mw),
	)
	if err != nil {
		return fmt.Errorf("init builder: %w", err)
	}

	agg := health.NewAggregator()
	agg.Register("store", health.NewStoreChecker(guarded))
	agg.Register("cache", health.NewCacheChecker(profileCache, cfg.CacheMaxEntries))

	authn := auth.NewJWTAuthenticator(auth.JWTConfig{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, auth.NewStaticKeyProvider([]byte(cfg.JWTSecret)))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Builder:       builder,
			Authenticator: authn,
			Health:        agg,
			Logger:        logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http server listening",
			observe.Field{Key: "addr", Value: cfg.HTTPAddr},
			observe.Field{Key: "store_driver", Value: cfg.StoreDriver},
			observe.Field{Key: "cache_ttl_ms", Value: cfg.CacheTTLMillis},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func cacheSizer(c cache.Cache) observe.CacheSizer {
	return func() (int, int) {
		stats := c.Stats()
		expired := 0
		for _, e := range stats.Entries {
			if e.Expired {
				expired++
			}
		}
		return stats.Size, expired
	}
}

// openStore returns the configured profile store and a func releasing it.
func openStore(ctx context.Context, cfg config.Config, migrate bool) (profile.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return profile.NewMemoryStore(), func() {}, nil
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(db)
		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = store.Close()
				return nil, nil, err
			}
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalid, cfg.StoreDriver)
	}
}
