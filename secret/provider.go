package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// ErrSecretNotFound indicates a provider has no value for a reference.
var ErrSecretNotFound = errors.New("secret: not found")

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct{}

// Name returns "env".
func (EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named ref.
func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %q", ErrSecretNotFound, ref)
	}
	return v, nil
}

// FileProvider resolves a reference as a file path, as used by Docker and
// Kubernetes secret mounts. Relative references are joined to Dir.
type FileProvider struct {
	Dir string
}

// Name returns "file".
func (FileProvider) Name() string { return "file" }

// Resolve returns the file contents with one trailing newline trimmed.
func (p FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(path) && p.Dir != "" {
		path = filepath.Join(p.Dir, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: file %q", ErrSecretNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("secret: read %q: %w", ref, err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r"), nil
}

var (
	_ Provider = EnvProvider{}
	_ Provider = FileProvider{}
)
