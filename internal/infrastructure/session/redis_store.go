package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/user-service/internal/core/domain"
)

const keyPrefix = "session:"

// RedisStore keeps opaque handles in Redis.
// Key format: session:<handle>, value: user id, expiry: ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore wrapping the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session: missing user id")
	}
	handle, err := GenerateID()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(handle), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: store handle: %w", err)
	}
	return handle, nil
}

func (s *RedisStore) Resolve(ctx context.Context, handle string) (string, error) {
	if handle == "" {
		return "", domain.ErrSessionInvalid
	}
	userID, err := s.client.Get(ctx, s.key(handle)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionInvalid
	}
	if err != nil {
		return "", fmt.Errorf("session: lookup handle: %w", err)
	}
	return userID, nil
}

// Revoke deletes the handle. Unknown handles are not an error.
func (s *RedisStore) Revoke(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(handle)).Err(); err != nil {
		return fmt.Errorf("session: revoke handle: %w", err)
	}
	return nil
}

// TTL reports how long issued handles live.
func (s *RedisStore) TTL() time.Duration { return s.ttl }

func (s *RedisStore) key(handle string) string {
	return keyPrefix + handle
}
