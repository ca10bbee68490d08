package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Resolver errors.
var (
	ErrUnknownProvider = errors.New("secret: provider is not registered")
	ErrEmptySecret     = errors.New("secret: provider returned empty value")
)

const refPrefix = "secretref:"

// Resolver expands environment variables and resolves secret references.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. With strict set, a reference that resolves
// to the empty string is an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider), strict: strict}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// DefaultResolver returns a strict resolver with the env and file providers.
func DefaultResolver() *Resolver {
	return NewResolver(true, EnvProvider{}, FileProvider{})
}

// ResolveValue expands ${VAR} references, then resolves secret references.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	return r.ResolveRefs(ctx, expanded)
}

// ResolveRefs resolves secret references in value without any ${VAR}
// expansion. Use it for values that already came from the environment.
func (r *Resolver) ResolveRefs(ctx context.Context, value string) (string, error) {
	if provider, ref, ok := ParseSecretRef(value); ok {
		return r.resolve(ctx, provider, ref)
	}
	return r.resolveInline(ctx, value)
}

// ParseSecretRef parses a whole-value reference of the form secretref:<provider>:<ref>.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolve(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySecret, providerName)
	}
	return resolved, nil
}

var inlineRefPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	matches := inlineRefPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(value[last:m[0]])
		resolved, err := r.resolve(ctx, value[m[2]:m[3]], value[m[4]:m[5]])
		if err != nil {
			return "", err
		}
		b.WriteString(resolved)
		last = m[1]
	}
	b.WriteString(value[last:])
	return b.String(), nil
}
