package store

import (
	"context"
	"fmt"

	"bitwise74/image-board/internal/model"

	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) Create(ctx context.Context, user *model.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user, %w", translate(err))
	}

	return nil
}

func (u *Users) ByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User

	err := u.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := u.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (u *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	return u.exists(ctx, "email = ?", email)
}

func (u *Users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return u.exists(ctx, "username = ?", username)
}

func (u *Users) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64

	err := u.db.WithContext(ctx).
		Model(model.User{}).
		Where(query, args...).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check if user exists, %w", err)
	}

	return count > 0, nil
}
