package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jonwraymond/creatorcontext/profile"
)

// Store is a read-only profile.Store over the creator tables.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to databaseURL and returns a Store over it.
func Open(ctx context.Context, databaseURL string, maxConns int32) (*Store, error) {
	db, err := Connect(ctx, databaseURL, maxConns)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// FindCreatorByUserID implements profile.Store.
func (s *Store) FindCreatorByUserID(ctx context.Context, userID string) (*profile.CreatorProfile, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	var rec creatorProfileModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", uid).Take(&rec).Error; err != nil {
		return nil, translate("find creator by user", err)
	}
	return toCreatorProfile(rec), nil
}

// FindCreatorOwnerByID implements profile.Store. Only the owner column is read.
func (s *Store) FindCreatorOwnerByID(ctx context.Context, creatorID string) (string, error) {
	id, err := parseID(creatorID)
	if err != nil {
		return "", err
	}
	var rec creatorProfileModel
	if err := s.db.WithContext(ctx).Select("user_id").Where("id = ?", id).Take(&rec).Error; err != nil {
		return "", translate("find creator owner", err)
	}
	return rec.UserID.String(), nil
}

// FindInstagramProfile implements profile.Store. Usernames match
// case-insensitively; the newest row wins.
func (s *Store) FindInstagramProfile(ctx context.Context, q profile.InstagramQuery) (*profile.InstagramCreatorProfile, error) {
	uid, err := parseID(q.UserID)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Where("user_id = ?", uid)
	if username := profile.NormalizeUsername(q.Username); username != "" {
		tx = tx.Where("lower(ltrim(username, '@')) = lower(?)", username)
	}
	var rec instagramProfileModel
	if err := tx.Order("created_at DESC").Take(&rec).Error; err != nil {
		return nil, translate("find instagram profile", err)
	}
	return toInstagramProfile(rec), nil
}

// Ping verifies the connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm sql db: %w", err)
	}
	return sqlDB.Close()
}

// parseID rejects malformed ids before they reach the database. No row can
// carry one, so they are reported as not found.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", profile.ErrNotFound, id)
	}
	return parsed, nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.ErrNotFound
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

var _ profile.Store = (*Store)(nil)
