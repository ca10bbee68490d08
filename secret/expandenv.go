package secret

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

// ErrMissingEnv indicates ${VAR} references to unset variables.
var ErrMissingEnv = errors.New("secret: missing required environment variables")

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands ${VAR} references in s.
//
//   - ${VAR} with VAR unset is an error naming every missing variable.
//   - $$ emits a literal $.
//   - Any other $ is kept as written, so $name is never expanded.
func ExpandEnvStrict(s string) (string, error) {
	const dollarSentinel = "\x00CREATORCTX_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(match[1]); !ok && !slices.Contains(missing, match[1]) {
			missing = append(missing, match[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	s = envVarPattern.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(ref)[1])
	})
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
