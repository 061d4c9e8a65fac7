package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/service"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - maps known domain errors to their HTTP status codes,
//   - adds a Basic challenge for realm on every 401,
//   - logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger, realm string) echo.HTTPErrorHandler {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Forbidden is checked before not-found: a delete of a missing lair
	// wraps both and must surface as 403.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		logRejection(log, err, c)
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrLairNotFound):
		return http.StatusNotFound, "lair not found"
	case errors.Is(err, domain.ErrInvalidLair):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	}

	// Unexpected error: log the real cause, return a generic message.
	ev := log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path())
	var rej *service.Rejection
	if errors.As(err, &rej) {
		ev = ev.Str("stage", string(rej.Stage)).Str("scheme", rej.Scheme)
	}
	ev.Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func logRejection(log zerolog.Logger, err error, c echo.Context) {
	ev := log.Info().Str("path", c.Path()).Str("remote_ip", c.RealIP())
	var rej *service.Rejection
	if errors.As(err, &rej) {
		ev = ev.Str("stage", string(rej.Stage)).Str("scheme", rej.Scheme)
	}
	ev.Str("reason", err.Error()).Msg("authentication rejected")
}
