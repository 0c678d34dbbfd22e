package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/api/handler"
	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain and backend errors to HTTP status codes.
//   - Carries field messages of validation failures in "fields".
//   - Logs unexpected errors without leaking details to the shell.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Response) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.Response{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.Response{Error: ve.Error(), Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, handler.Response{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrMissingEntity):
		return http.StatusForbidden, handler.Response{Error: err.Error()}
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound, handler.Response{Error: err.Error()}
	case errors.Is(err, domain.ErrListingLocked), errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrProfileExists):
		return http.StatusConflict, handler.Response{Error: err.Error()}
	case errors.Is(err, domain.ErrProfileUnreachable):
		return http.StatusBadGateway, handler.Response{Error: domain.ErrProfileUnreachable.Error()}
	}

	var re *domain.RequestError
	if errors.As(err, &re) {
		code := re.Status
		if code < 400 || code >= 500 {
			code = http.StatusBadGateway
		}
		return code, handler.Response{Error: re.Message}
	}

	var ne *domain.NetworkError
	if errors.As(err, &ne) {
		return http.StatusServiceUnavailable, handler.Response{Error: "server unreachable, check your connection"}
	}

	var te *domain.TransportError
	if errors.As(err, &te) {
		return http.StatusBadGateway, handler.Response{Error: "server unreachable or malformed response"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.Response{Error: "internal server error"}
}
