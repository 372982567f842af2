package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/infrastructure/oauth"
)

// OAuthRedirects are the front-end locations the callback sends users to.
type OAuthRedirects struct {
	Success string
	Failure string
}

// OAuthHandler drives the authorization-code handshake with one provider.
type OAuthHandler struct {
	provider  oauth.Provider
	flow      oauth.Flow
	auth      ports.AuthService
	cookies   SessionCookies
	redirects OAuthRedirects
	log       zerolog.Logger
}

func NewOAuthHandler(provider oauth.Provider, auth ports.AuthService, cookies SessionCookies, redirects OAuthRedirects, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{
		provider:  provider,
		flow:      oauth.Flow{Secure: cookies.Options.Secure},
		auth:      auth,
		cookies:   cookies,
		redirects: redirects,
		log:       log,
	}
}

// Redirect sends the browser to the provider's consent page.
//
// @Summary      Start Google login
// @Tags         oauth
// @Success      302
// @Router       /auth/google [get]
func (h *OAuthHandler) Redirect(c echo.Context) error {
	state, verifier := h.flow.Begin(c.Response())
	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, verifier))
}

// Callback completes the handshake, logs the user in (provisioning an
// account on first sight) and redirects to the success or failure page.
//
// @Summary      Google login callback
// @Tags         oauth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "State"
// @Success      302
// @Failure      500    {object}  errorResponse
// @Router       /auth/google/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	verifier, ok := h.flow.Finish(c.Response(), c.Request())
	if !ok {
		h.log.Warn().Str("provider", h.provider.Name()).Msg("oauth state mismatch")
		return h.fail(c)
	}
	if e := c.QueryParam("error"); e != "" {
		h.log.Info().Str("provider", h.provider.Name()).Str("reason", e).Msg("oauth consent denied")
		return h.fail(c)
	}
	code := c.QueryParam("code")
	if code == "" {
		return h.fail(c)
	}

	ctx := c.Request().Context()
	profile, token, err := h.provider.Exchange(ctx, code, verifier)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", h.provider.Name()).Msg("oauth exchange failed")
		return h.fail(c)
	}

	user, err := h.auth.AuthenticateExternal(ctx, profile, token)
	if err != nil {
		var ce *domain.ConstraintError
		switch {
		case errors.Is(err, domain.ErrInvalidProfile):
			return h.fail(c)
		case errors.As(err, &ce):
			h.log.Warn().Str("provider", h.provider.Name()).Str("detail", ce.Detail).Msg("oauth account provisioning rejected")
			return h.fail(c)
		}
		return err
	}

	endPreviousSession(c, h.auth, h.log)
	handle, err := h.auth.Login(ctx, user, h.provider.Name())
	if err != nil {
		return err
	}
	h.cookies.set(c, handle)
	return c.Redirect(http.StatusFound, h.redirects.Success)
}

func (h *OAuthHandler) fail(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.redirects.Failure)
}
