package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitwise74/image-board/internal/model"
	"bitwise74/image-board/internal/store"
	"bitwise74/image-board/pkg/security"
	"bitwise74/image-board/pkg/util"
	"bitwise74/image-board/validators"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDLength = 16

// SessionIdentity is what a successful login hands back to the HTTP layer
type SessionIdentity struct {
	// Token is the opaque value the client keeps in its cookie
	Token   string
	Session *model.Session
	User    *model.User
}

type AuthService struct {
	users    *store.Users
	sessions store.SessionStore
	hasher   *security.ArgonHash
	signer   *security.SessionSigner
	maxAge   time.Duration
}

func NewAuthService(users *store.Users, sessions store.SessionStore, hasher *security.ArgonHash, signer *security.SessionSigner, maxAge time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		signer:   signer,
		maxAge:   maxAge,
	}
}

// MaxAge is how long a new session stays valid
func (s *AuthService) MaxAge() time.Duration {
	return s.maxAge
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Register creates a new account. The password is only ever stored hashed.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := validators.UsernameValidator(username); err != nil {
		return nil, invalid(err)
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, invalid(err)
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, invalid(err)
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrDuplicateEmail
	}

	taken, err = s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := util.RandStr(userIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := &model.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, store.ErrDuplicate) {
			if taken, _ := s.users.UsernameTaken(ctx, username); taken {
				return nil, ErrDuplicateUsername
			}

			return nil, ErrDuplicateEmail
		}

		return nil, err
	}

	return user, nil
}

// Login checks the credentials and opens a new session for the user
func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionIdentity, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.maxAge),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &SessionIdentity{
		Token:   token,
		Session: sess,
		User:    user,
	}, nil
}

// Logout forgets the session behind token. Unknown or invalid tokens are
// not an error, there is simply nothing to forget.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sid, err := s.signer.Parse(token)
	if err != nil {
		return nil
	}

	return s.sessions.Delete(ctx, sid)
}

// ResolveCurrentUser returns the user the token belongs to, or nil when the
// request is anonymous. Only infrastructure failures are returned as errors.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	sid, err := s.signer.Parse(token)
	if err != nil {
		zap.L().Debug("Rejected session token", zap.Error(err))
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	user, err := s.users.ByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return user, nil
}
