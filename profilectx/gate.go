package profilectx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/creatorcontext/auth"
	"github.com/jonwraymond/creatorcontext/profile"
)

// OwnerLookup resolves the owning user of a creator profile.
// profile.Store satisfies it.
type OwnerLookup interface {
	FindCreatorOwnerByID(ctx context.Context, creatorID string) (string, error)
}

// AccessGate decides whose profile data a caller may read.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Reads: at most one owner lookup per call and never a profile read.
//   - Errors: auth.ErrUnauthenticated, ErrTargetNotFound, *auth.AuthzError
//     (matching auth.ErrForbidden) or a wrapped ErrStoreRead.
type AccessGate struct {
	sessions auth.SessionProvider
	owners   OwnerLookup
}

// NewAccessGate creates a gate over the given collaborators.
func NewAccessGate(sessions auth.SessionProvider, owners OwnerLookup) (*AccessGate, error) {
	if sessions == nil || owners == nil {
		return nil, ErrNilDependency
	}
	return &AccessGate{sessions: sessions, owners: owners}, nil
}

// ResolveAndAuthorize returns the user id whose data the caller may read.
// An empty targetID means the caller's own profile. A non-empty targetID is a
// creator profile id that must be owned by the caller.
func (g *AccessGate) ResolveAndAuthorize(ctx context.Context, targetID string) (string, error) {
	userID, err := g.currentUser(ctx)
	if err != nil {
		return "", err
	}

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return userID, nil
	}

	owner, err := g.owners.FindCreatorOwnerByID(ctx, targetID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return "", fmt.Errorf("%w: %s", ErrTargetNotFound, targetID)
	case err != nil:
		return "", fmt.Errorf("%w: owner lookup: %w", ErrStoreRead, err)
	}

	if owner != userID {
		return "", &auth.AuthzError{
			Subject:  userID,
			Resource: "creator_profile:" + targetID,
			Action:   "read",
			Reason:   "target owned by another user",
		}
	}
	return owner, nil
}

func (g *AccessGate) currentUser(ctx context.Context) (string, error) {
	session, err := g.sessions.CurrentSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}
	if session == nil || strings.TrimSpace(session.UserID) == "" {
		return "", auth.ErrUnauthenticated
	}
	return session.UserID, nil
}
