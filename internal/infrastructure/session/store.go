package session

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/user-service/internal/core/ports"
)

// Store kinds accepted by New.
const (
	KindRedis  = "redis"
	KindCookie = "cookie"
)

// DefaultTTL applies when no lifetime is configured.
const DefaultTTL = 24 * time.Hour

// Store is a ports.SessionStore that also knows its handle lifetime, which
// the cookie transport uses for the Expires attribute.
type Store interface {
	ports.SessionStore
	TTL() time.Duration
}

// New builds the store named by kind. client is only used by the redis store.
func New(kind string, client *redis.Client, secret string, ttl time.Duration) (Store, error) {
	switch kind {
	case KindRedis:
		if client == nil {
			return nil, fmt.Errorf("session: %s store requires a redis client", kind)
		}
		return NewRedisStore(client, ttl), nil
	case KindCookie:
		return NewSignedCookieStore(secret, ttl)
	default:
		return nil, fmt.Errorf("session: unknown store %q", kind)
	}
}
