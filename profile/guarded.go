package profile

import (
	"context"

	"github.com/jonwraymond/creatorcontext/resilience"
)

// GuardedStore runs every read of the wrapped Store through a
// resilience.Guard. ErrNotFound is a normal answer and never trips the circuit.
type GuardedStore struct {
	store Store
	guard *resilience.Guard
}

// NewGuardedStore wraps store. cfg.Expected gains ErrNotFound.
func NewGuardedStore(store Store, cfg resilience.GuardConfig) *GuardedStore {
	cfg.Expected = append(cfg.Expected, ErrNotFound)
	return &GuardedStore{store: store, guard: resilience.NewGuard(cfg)}
}

// State returns the guard's circuit state.
func (s *GuardedStore) State() resilience.State { return s.guard.State() }

// FindCreatorByUserID implements Store.
func (s *GuardedStore) FindCreatorByUserID(ctx context.Context, userID string) (*CreatorProfile, error) {
	return resilience.Do(ctx, s.guard, func(ctx context.Context) (*CreatorProfile, error) {
		return s.store.FindCreatorByUserID(ctx, userID)
	})
}

// FindCreatorOwnerByID implements Store.
func (s *GuardedStore) FindCreatorOwnerByID(ctx context.Context, creatorID string) (string, error) {
	return resilience.Do(ctx, s.guard, func(ctx context.Context) (string, error) {
		return s.store.FindCreatorOwnerByID(ctx, creatorID)
	})
}

// FindInstagramProfile implements Store.
func (s *GuardedStore) FindInstagramProfile(ctx context.Context, q InstagramQuery) (*InstagramCreatorProfile, error) {
	return resilience.Do(ctx, s.guard, func(ctx context.Context) (*InstagramCreatorProfile, error) {
		return s.store.FindInstagramProfile(ctx, q)
	})
}

// Ping checks the wrapped store directly, bypassing the circuit so health
// checks see the real state of the backend.
func (s *GuardedStore) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

var _ Store = (*GuardedStore)(nil)
