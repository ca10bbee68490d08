// Package config loads service configuration from defaults, an optional YAML
// file and the environment, in that order of precedence (environment wins).
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/creatorcontext/cache"
	"github.com/jonwraymond/creatorcontext/observe"
	"github.com/jonwraymond/creatorcontext/secret"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrInvalid indicates a configuration value failed validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the service configuration.
type Config struct {
	ServiceName     string
	Version         string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	StoreDriver        string
	DatabaseURL        string
	MaxDBConns         int32
	StoreTimeout       time.Duration
	BreakerMaxFailures int
	BreakerReset       time.Duration

	CacheTTLMillis  int64
	CacheCoalesce   bool
	CacheMaxEntries int

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	LogLevel        string
	TracesExporter  string
	MetricsExporter string
	TracesSamplePct float64
}

type configFile struct {
	Service struct {
		Name            string `yaml:"name"`
		HTTPAddr        string `yaml:"http_addr"`
		ShutdownSeconds int    `yaml:"shutdown_seconds"`
	} `yaml:"service"`
	Store struct {
		Driver             string `yaml:"driver"`
		DatabaseURL        string `yaml:"database_url"`
		MaxConns           int32  `yaml:"max_conns"`
		TimeoutMillis      int64  `yaml:"timeout_ms"`
		BreakerMaxFailures int    `yaml:"breaker_max_failures"`
		BreakerResetSecs   int    `yaml:"breaker_reset_seconds"`
	} `yaml:"store"`
	Cache struct {
		TTLMillis  *int64 `yaml:"ttl_ms"`
		Coalesce   *bool  `yaml:"coalesce"`
		MaxEntries int    `yaml:"max_entries"`
	} `yaml:"cache"`
	Auth struct {
		JWTSecret   string `yaml:"jwt_secret"`
		JWTIssuer   string `yaml:"jwt_issuer"`
		JWTAudience string `yaml:"jwt_audience"`
	} `yaml:"auth"`
	Telemetry struct {
		LogLevel        string   `yaml:"log_level"`
		TracesExporter  string   `yaml:"traces_exporter"`
		MetricsExporter string   `yaml:"metrics_exporter"`
		TracesSamplePct *float64 `yaml:"traces_sample_pct"`
	} `yaml:"telemetry"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ServiceName:        "creatorctxd",
		Version:            "dev",
		HTTPAddr:           ":8080",
		ShutdownTimeout:    15 * time.Second,
		StoreDriver:        DriverPostgres,
		MaxDBConns:         10,
		StoreTimeout:       3 * time.Second,
		BreakerMaxFailures: 5,
		BreakerReset:       30 * time.Second,
		CacheTTLMillis:     cache.DefaultTTLMillis,
		CacheCoalesce:      true,
		CacheMaxEntries:    50000,
		JWTAudience:        "authenticated",
		LogLevel:           "info",
		TracesExporter:     "none",
		MetricsExporter:    "prometheus",
		TracesSamplePct:    1.0,
	}
}

// Load builds the configuration. path may be empty; a missing file is not an
// error. String values from the file go through strict ${VAR} expansion.
// Secret-bearing values from either source then go through secretref
// resolution. Environment values are never expanded.
func Load(ctx context.Context, path string) (Config, error) {
	return LoadWith(ctx, path, secret.DefaultResolver())
}

// LoadWith is Load with an explicit secret resolver.
func LoadWith(ctx context.Context, path string, resolver *secret.Resolver) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			var f configFile
			if err := yaml.Unmarshal(raw, &f); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
			if err := cfg.applyFile(f); err != nil {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	secrets := []*string{&cfg.JWTSecret, &cfg.JWTIssuer}
	if cfg.StoreDriver == DriverPostgres {
		secrets = append(secrets, &cfg.DatabaseURL)
	}
	for _, field := range secrets {
		resolved, err := resolver.ResolveRefs(ctx, *field)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config value: %w", err)
		}
		*field = resolved
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile copies the file's values over the defaults. String values go
// through strict ${VAR} expansion. A value the environment replaces is not
// expanded, and the database url is skipped unless the postgres driver is
// selected.
func (c *Config) applyFile(f configFile) error {
	var errs []error
	expand := func(dst *string, raw, envName string) {
		if strings.TrimSpace(raw) == "" || envSet(envName) {
			return
		}
		v, err := secret.ExpandEnvStrict(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("config file: %w", err))
			return
		}
		setString(dst, v)
	}

	expand(&c.ServiceName, f.Service.Name, "")
	expand(&c.HTTPAddr, f.Service.HTTPAddr, "HTTP_ADDR")
	if f.Service.ShutdownSeconds > 0 {
		c.ShutdownTimeout = time.Duration(f.Service.ShutdownSeconds) * time.Second
	}

	expand(&c.StoreDriver, f.Store.Driver, "STORE_DRIVER")
	if driver := strings.TrimSpace(os.Getenv("STORE_DRIVER")); driver == DriverPostgres ||
		(driver == "" && c.StoreDriver == DriverPostgres) {
		expand(&c.DatabaseURL, f.Store.DatabaseURL, "DATABASE_URL")
	}
	if f.Store.MaxConns > 0 {
		c.MaxDBConns = f.Store.MaxConns
	}
	if f.Store.TimeoutMillis > 0 {
		c.StoreTimeout = time.Duration(f.Store.TimeoutMillis) * time.Millisecond
	}
	if f.Store.BreakerMaxFailures > 0 {
		c.BreakerMaxFailures = f.Store.BreakerMaxFailures
	}
	if f.Store.BreakerResetSecs > 0 {
		c.BreakerReset = time.Duration(f.Store.BreakerResetSecs) * time.Second
	}

	if f.Cache.TTLMillis != nil {
		c.CacheTTLMillis = *f.Cache.TTLMillis
	}
	if f.Cache.Coalesce != nil {
		c.CacheCoalesce = *f.Cache.Coalesce
	}
	if f.Cache.MaxEntries > 0 {
		c.CacheMaxEntries = f.Cache.MaxEntries
	}

	expand(&c.JWTSecret, f.Auth.JWTSecret, "JWT_SECRET")
	expand(&c.JWTIssuer, f.Auth.JWTIssuer, "JWT_ISSUER")
	expand(&c.JWTAudience, f.Auth.JWTAudience, "JWT_AUDIENCE")

	expand(&c.LogLevel, f.Telemetry.LogLevel, "LOG_LEVEL")
	expand(&c.TracesExporter, f.Telemetry.TracesExporter, "OTEL_TRACES_EXPORTER")
	expand(&c.MetricsExporter, f.Telemetry.MetricsExporter, "OTEL_METRICS_EXPORTER")
	if f.Telemetry.TracesSamplePct != nil {
		c.TracesSamplePct = *f.Telemetry.TracesSamplePct
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, os.Getenv("HTTP_ADDR"))
	setString(&c.StoreDriver, os.Getenv("STORE_DRIVER"))
	setString(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&c.JWTSecret, os.Getenv("JWT_SECRET"))
	setString(&c.JWTIssuer, os.Getenv("JWT_ISSUER"))
	setString(&c.JWTAudience, os.Getenv("JWT_AUDIENCE"))
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&c.TracesExporter, os.Getenv("OTEL_TRACES_EXPORTER"))
	setString(&c.MetricsExporter, os.Getenv("OTEL_METRICS_EXPORTER"))

	var errs []error
	if v, ok, err := envInt("CREATOR_PROFILE_CACHE_TTL_MS", 64); ok {
		c.CacheTTLMillis = v
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := envInt("DB_MAX_CONNS", 32); ok {
		c.MaxDBConns = int32(v)
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := envBool("CACHE_COALESCE"); ok {
		c.CacheCoalesce = v
	} else if err != nil {
		errs = append(errs, err)
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLE_PCT")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: OTEL_TRACES_SAMPLE_PCT=%q", ErrInvalid, raw))
		} else {
			c.TracesSamplePct = v
		}
	}
	return errors.Join(errs...)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("%w: DATABASE_URL is required for the postgres driver", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%w: JWT_SECRET is required", ErrInvalid))
	}
	if c.MaxDBConns <= 0 {
		errs = append(errs, fmt.Errorf("%w: DB_MAX_CONNS must be positive", ErrInvalid))
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// CachePolicy returns the cache policy. A TTL of zero or less disables caching.
func (c Config) CachePolicy() cache.Policy {
	return cache.PolicyFromMillis(c.CacheTTLMillis)
}

// Observe returns the telemetry configuration.
func (c Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracesExporter != "" && c.TracesExporter != "none",
			Exporter:  c.TracesExporter,
			SamplePct: c.TracesSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

// envSet reports whether applyEnv will override a value from name.
func envSet(name string) bool {
	return name != "" && strings.TrimSpace(os.Getenv(name)) != ""
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func envInt(name string, bits int) (int64, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s=%q", ErrInvalid, name, raw)
	}
	return v, true, nil
}

func envBool(name string) (bool, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false, nil
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true, true, nil
	case "0", "false", "no":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("%w: %s=%q", ErrInvalid, name, raw)
	}
}
