// Package store isolates every database query behind small typed repositories
// so the services above can be tested without caring about SQL.
package store

import (
	"context"
	"errors"

	"bitwise74/image-board/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// SessionStore keeps server side session identities
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	// Get returns ErrNotFound for unknown or expired sessions
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}

	return err
}
