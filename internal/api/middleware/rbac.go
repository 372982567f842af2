package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/core/domain"
)

// RequireRole lets the request through only when the principal holds one of
// the given roles. Anything else is answered with a bare 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := Principal(c)
			for _, r := range roles {
				if user.HasRole(r) {
					return next(c)
				}
			}
			return c.NoContent(http.StatusUnauthorized)
		}
	}
}

// RequireAdmin gates a route on the ADMIN role.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin)
}
