package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhub/user-service/internal/core/domain"
)

// SignedCookieStore is a stateless store: the handle is an HS256 token whose
// subject is the user id. Nothing is kept server side, so Revoke is a no-op
// and logout relies on the transport clearing the cookie.
type SignedCookieStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedCookieStore returns a store signing handles with secret.
func NewSignedCookieStore(secret string, ttl time.Duration) (*SignedCookieStore, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SignedCookieStore{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *SignedCookieStore) Issue(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session: missing user id")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign handle: %w", err)
	}
	return signed, nil
}

func (s *SignedCookieStore) Resolve(_ context.Context, handle string) (string, error) {
	if handle == "" {
		return "", domain.ErrSessionInvalid
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(handle, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrSessionInvalid
	}
	return claims.Subject, nil
}

func (s *SignedCookieStore) Revoke(context.Context, string) error { return nil }

// TTL reports how long issued handles stay valid.
func (s *SignedCookieStore) TTL() time.Duration { return s.ttl }
