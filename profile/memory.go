package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	creators  map[string]*CreatorProfile // keyed by creator id
	byUser    map[string]string          // user id -> creator id
	instagram []*InstagramCreatorProfile // insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		creators: make(map[string]*CreatorProfile),
		byUser:   make(map[string]string),
	}
}

// PutCreator inserts or replaces the creator profile for p.UserID.
// A missing ID is generated. The stored row is a copy of p.
func (s *MemoryStore) PutCreator(p *CreatorProfile) (*CreatorProfile, error) {
	if p == nil || strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("profile: creator profile requires a user id")
	}
	row := *p
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byUser[row.UserID]; ok && prev != row.ID {
		delete(s.creators, prev)
	}
	s.creators[row.ID] = &row
	s.byUser[row.UserID] = row.ID

	out := row
	return &out, nil
}

// PutInstagram appends an Instagram intelligence row.
func (s *MemoryStore) PutInstagram(p *InstagramCreatorProfile) (*InstagramCreatorProfile, error) {
	if p == nil || strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("profile: instagram profile requires a user id")
	}
	row := *p
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.instagram = append(s.instagram, &row)
	s.mu.Unlock()

	out := row
	return &out, nil
}

// FindCreatorByUserID returns a copy of the creator profile owned by userID.
func (s *MemoryStore) FindCreatorByUserID(_ context.Context, userID string) (*CreatorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	row := *s.creators[id]
	return &row, nil
}

// FindCreatorOwnerByID returns the user id owning creatorID.
func (s *MemoryStore) FindCreatorOwnerByID(_ context.Context, creatorID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.creators[creatorID]
	if !ok {
		return "", ErrNotFound
	}
	return row.UserID, nil
}

// FindInstagramProfile returns the newest row for q.UserID, filtered by
// q.Username when set.
func (s *MemoryStore) FindInstagramProfile(_ context.Context, q InstagramQuery) (*InstagramCreatorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *InstagramCreatorProfile
	for _, row := range s.instagram {
		if row.UserID != q.UserID {
			continue
		}
		if u := NormalizeUsername(q.Username); u != "" && !strings.EqualFold(NormalizeUsername(row.Username), u) {
			continue
		}
		// Ties go to the later insert.
		if best == nil || !row.CreatedAt.Before(best.CreatedAt) {
			best = row
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	out := *best
	return &out, nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }
