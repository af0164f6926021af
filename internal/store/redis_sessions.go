package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitwise74/image-board/internal/model"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisSessions keeps sessions in redis, expiry is handled by key TTLs
type RedisSessions struct {
	c *redis.Client
}

func NewRedisSessions(c *redis.Client) *RedisSessions {
	return &RedisSessions{c: c}
}

func (r *RedisSessions) Create(ctx context.Context, sess *model.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session, %w", err)
	}

	ok, err := r.c.SetNX(ctx, sessionKeyPrefix+sess.ID, b, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session, %w", err)
	}

	if !ok {
		return ErrDuplicate
	}

	return nil
}

func (r *RedisSessions) Get(ctx context.Context, id string) (*model.Session, error) {
	b, err := r.c.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get session, %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session, %w", err)
	}

	if sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}

	return &sess, nil
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := r.c.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session, %w", err)
	}

	return nil
}
