package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/userhub/user-service/internal/core/domain"
)

func TestSignedCookieStore_RoundTrip(t *testing.T) {
	s, err := NewSignedCookieStore("secret", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handle, err := s.Issue(context.Background(), "507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := s.Resolve(context.Background(), handle)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "507f1f77bcf86cd799439011" {
		t.Fatalf("expected user id back, got %q", got)
	}
}

func TestSignedCookieStore_RejectsForeignSignature(t *testing.T) {
	a, _ := NewSignedCookieStore("secret-a", time.Hour)
	b, _ := NewSignedCookieStore("secret-b", time.Hour)

	handle, _ := a.Issue(context.Background(), "u1")
	if _, err := b.Resolve(context.Background(), handle); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSignedCookieStore_Expired(t *testing.T) {
	s, _ := NewSignedCookieStore("secret", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issuedAt }

	handle, err := s.Issue(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := s.Resolve(context.Background(), handle); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for expired handle, got %v", err)
	}
}

func TestSignedCookieStore_Garbage(t *testing.T) {
	s, _ := NewSignedCookieStore("secret", time.Hour)

	for _, h := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := s.Resolve(context.Background(), h); !errors.Is(err, domain.ErrSessionInvalid) {
			t.Fatalf("handle %q: expected ErrSessionInvalid, got %v", h, err)
		}
	}
}

func TestNewSignedCookieStore_RequiresSecret(t *testing.T) {
	if _, err := NewSignedCookieStore("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestNew_SelectsStore(t *testing.T) {
	st, err := New(KindCookie, nil, "secret", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.(*SignedCookieStore); !ok {
		t.Fatalf("expected *SignedCookieStore, got %T", st)
	}
	if st.TTL() != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", st.TTL())
	}

	if _, err := New(KindRedis, nil, "", time.Hour); err == nil {
		t.Fatalf("expected error for redis store without client")
	}
	if _, err := New("memcached", nil, "", time.Hour); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID: %v", err)
		}
		if len(id) != 43 {
			t.Fatalf("expected 43 chars, got %d", len(id))
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
