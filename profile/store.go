package profile

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by a Store when no row matches the query.
var ErrNotFound = errors.New("profile: not found")

// InstagramQuery selects an Instagram intelligence row.
// When Username is empty the most recently created row for UserID is returned.
type InstagramQuery struct {
	UserID   string
	Username string
}

// Store reads creator rows. Implementations never write through this interface.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: a missing row is reported as ErrNotFound (possibly wrapped); any other
//   error is a read failure.
type Store interface {
	// FindCreatorByUserID returns the creator profile owned by userID.
	FindCreatorByUserID(ctx context.Context, userID string) (*CreatorProfile, error)

	// FindCreatorOwnerByID returns the owning user id of the creator profile creatorID.
	FindCreatorOwnerByID(ctx context.Context, creatorID string) (string, error)

	// FindInstagramProfile returns the Instagram intelligence row matching q.
	FindInstagramProfile(ctx context.Context, q InstagramQuery) (*InstagramCreatorProfile, error)
}

// NormalizeUsername trims whitespace and a leading "@" from an Instagram handle.
// Handles compare case-insensitively; the result keeps its case for display.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
