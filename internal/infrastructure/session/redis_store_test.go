package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/user-service/internal/core/domain"
)

// newTestRedis connects to REDIS_TEST_ADDR. Tests are skipped when it is unset.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set; skipping Redis integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_IssueResolveRevoke(t *testing.T) {
	client := newTestRedis(t)
	s := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	handle, err := s.Issue(ctx, "u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	t.Cleanup(func() { _ = client.Del(ctx, keyPrefix+handle).Err() })

	ttl, err := client.TTL(ctx, keyPrefix+handle).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within a minute, got %v (%v)", ttl, err)
	}

	got, err := s.Resolve(ctx, handle)
	if err != nil || got != "u1" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}

	if err := s.Revoke(ctx, handle); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := s.Resolve(ctx, handle); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after revoke, got %v", err)
	}
	if err := s.Revoke(ctx, handle); err != nil {
		t.Fatalf("second Revoke should be a no-op, got %v", err)
	}
}
