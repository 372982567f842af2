package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

// AuthHandler serves login, logout and the session probes.
type AuthHandler struct {
	auth    ports.AuthService
	cookies SessionCookies
	log     zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, cookies SessionCookies, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, log: log}
}

// Login authenticates with username and password and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/assignment/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.auth.AuthenticateLocal(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return err
	}

	endPreviousSession(c, h.auth, h.log)
	handle, err := h.auth.Login(ctx, user, domain.StrategyLocal)
	if err != nil {
		return err
	}
	h.cookies.set(c, handle)
	middleware.SetPrincipal(c, user, handle)
	return c.JSON(http.StatusOK, user)
}

// Logout ends the current session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      200
// @Router       /api/assignment/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), middleware.Handle(c), middleware.Principal(c)); err != nil {
		h.log.Warn().Err(err).Msg("revoke session on logout")
	}
	h.cookies.clear(c)
	return c.String(http.StatusOK, http.StatusText(http.StatusOK))
}

// endPreviousSession revokes the handle the request arrived with, if any, so
// a new login does not leave the old one usable until it expires.
func endPreviousSession(c echo.Context, auth ports.AuthService, log zerolog.Logger) {
	handle := middleware.Handle(c)
	if handle == "" {
		return
	}
	if err := auth.Logout(c.Request().Context(), handle, middleware.Principal(c)); err != nil {
		log.Warn().Err(err).Msg("revoke previous session")
	}
}

// CheckLoggedIn returns the principal, or "0" for anonymous callers.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Router       /api/assignment/checkLoggedIn [get]
func (h *AuthHandler) CheckLoggedIn(c echo.Context) error {
	user := middleware.Principal(c)
	if user == nil {
		return c.String(http.StatusOK, notLoggedIn)
	}
	return c.JSON(http.StatusOK, user)
}

// CheckAdmin returns the principal when it holds the ADMIN role, or "0".
//
// @Summary      Current user if admin
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Router       /api/assignment/checkAdmin [get]
func (h *AuthHandler) CheckAdmin(c echo.Context) error {
	user := middleware.Principal(c)
	if !user.IsAdmin() {
		return c.String(http.StatusOK, notLoggedIn)
	}
	return c.JSON(http.StatusOK, user)
}
