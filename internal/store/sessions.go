package store

import (
	"context"
	"fmt"
	"time"

	"bitwise74/image-board/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sessions keeps sessions in the main database
type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

func (s *Sessions) Create(ctx context.Context, sess *model.Session) error {
	// Stored as text in sqlite, keep one zone so comparisons hold
	sess.ExpiresAt = sess.ExpiresAt.UTC()

	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return fmt.Errorf("failed to create session, %w", translate(err))
	}

	return nil
}

func (s *Sessions) Get(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session

	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sess).
		Error
	if err != nil {
		return nil, translate(err)
	}

	if sess.Expired(time.Now()) {
		// Lazily drop it, nobody can use it anymore
		if err := s.Delete(ctx, id); err != nil {
			zap.L().Warn("Failed to delete expired session", zap.Error(err))
		}

		return nil, ErrNotFound
	}

	return &sess, nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(model.Session{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete session, %w", err)
	}

	return nil
}

// DeleteExpired removes every session past its expiry and returns how many
// were removed
func (s *Sessions) DeleteExpired(ctx context.Context) (int64, error) {
	r := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(model.Session{})
	if r.Error != nil {
		return 0, fmt.Errorf("failed to cleanup sessions, %w", r.Error)
	}

	return r.RowsAffected, nil
}
