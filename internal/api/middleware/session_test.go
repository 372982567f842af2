package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/infrastructure/session"
)

type stubResolver struct {
	users map[string]*domain.User
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, handle string) (*domain.User, error) {
	s.calls++
	if u, ok := s.users[handle]; ok {
		return u, nil
	}
	return nil, domain.ErrSessionInvalid
}

var testCookie = session.CookieOptions{Name: "sid"}

func runSession(t *testing.T, r *stubResolver, cookie *http.Cookie) (*httptest.ResponseRecorder, *domain.User, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var principal *domain.User
	var handle string
	handler := Session(r, testCookie, zerolog.Nop())(func(c echo.Context) error {
		principal = Principal(c)
		handle = Handle(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, principal, handle
}

func TestSession_NoCookie(t *testing.T) {
	r := &stubResolver{}
	rec, principal, _ := runSession(t, r, nil)

	if principal != nil {
		t.Fatalf("expected anonymous request")
	}
	if r.calls != 0 {
		t.Fatalf("resolver should not be called without a cookie")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookies to be written")
	}
}

func TestSession_LoadsPrincipal(t *testing.T) {
	alice := &domain.User{ID: "1", Username: "alice"}
	r := &stubResolver{users: map[string]*domain.User{"h1": alice}}

	_, principal, handle := runSession(t, r, &http.Cookie{Name: "sid", Value: "h1"})
	if principal != alice || handle != "h1" {
		t.Fatalf("expected alice with handle h1, got %+v %q", principal, handle)
	}
}

func TestSession_InvalidHandleClearsCookie(t *testing.T) {
	r := &stubResolver{users: map[string]*domain.User{}}

	rec, principal, _ := runSession(t, r, &http.Cookie{Name: "sid", Value: "stale"})
	if principal != nil {
		t.Fatalf("expected anonymous request")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cleared session cookie, got %+v", cookies)
	}
}

func TestMaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"username": {"alice"}, "password": {"secret"}})
	if got != "password=%2A%2A%2A%2A&username=alice" {
		t.Fatalf("unexpected masked query %q", got)
	}
}
