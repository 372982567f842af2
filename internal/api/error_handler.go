package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
)

// errorResponse is the JSON body of every error the router renders itself.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler renders errors that handlers return instead of writing
// a response. Store and session failures become 500 after being logged.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ce *domain.ConstraintError
	switch {
	case errors.As(err, &ce):
		return http.StatusForbidden, ce.Detail
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidUserID):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusUnprocessableEntity, domain.ErrPasswordTooLong.Error()
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")

	return http.StatusInternalServerError, "internal server error"
}
