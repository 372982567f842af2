package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/infrastructure/session"
)

const (
	principalKey = "principal"
	handleKey    = "session_handle"
)

// SessionResolver turns a session handle into the user it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, handle string) (*domain.User, error)
}

// Session loads the principal behind the session cookie, if any. A handle
// that no longer resolves has its cookie cleared and the request continues
// anonymously.
func Session(resolver SessionResolver, cookie session.CookieOptions, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			handle := session.HandleFromRequest(c.Request(), cookie)
			if handle == "" {
				return next(c)
			}

			user, err := resolver.Resolve(c.Request().Context(), handle)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("session not resolved")
				session.ClearCookie(c.Response(), cookie)
				return next(c)
			}

			SetPrincipal(c, user, handle)
			return next(c)
		}
	}
}

// SetPrincipal marks the request as authenticated.
func SetPrincipal(c echo.Context, user *domain.User, handle string) {
	c.Set(principalKey, user)
	c.Set(handleKey, handle)
}

// Principal returns the authenticated user, or nil for anonymous requests.
func Principal(c echo.Context) *domain.User {
	user, _ := c.Get(principalKey).(*domain.User)
	return user
}

// Handle returns the session handle the principal was loaded from.
func Handle(c echo.Context) string {
	h, _ := c.Get(handleKey).(string)
	return h
}
