package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/infrastructure/session"
)

// SessionCookies writes and clears the session cookie on responses.
type SessionCookies struct {
	Options session.CookieOptions
	TTL     time.Duration
}

func (s SessionCookies) set(c echo.Context, handle string) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	session.SetCookie(c.Response(), handle, time.Now().Add(ttl), s.Options)
}

func (s SessionCookies) clear(c echo.Context) {
	session.ClearCookie(c.Response(), s.Options)
}
