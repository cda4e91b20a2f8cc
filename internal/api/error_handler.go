package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Unexpected
// errors are logged and never leak to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
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
		if he.Internal != nil {
			log.Warn().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Msg
	}

	if domain.IsOTPFailure(err) {
		return http.StatusBadRequest, "invalid or expired code"
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, "account is disabled"
	case errors.Is(err, domain.ErrRoomAlreadyOwned):
		return http.StatusBadRequest, "You already have a room"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusBadRequest, domain.ErrResetTokenInvalid.Error()
	case errors.Is(err, domain.ErrResendTooSoon):
		return http.StatusTooManyRequests, domain.ErrResendTooSoon.Error()
	case errors.Is(err, domain.ErrOTPLocked):
		return http.StatusTooManyRequests, domain.ErrOTPLocked.Error()
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrSuperadminExists),
		errors.Is(err, domain.ErrCarUnavailable):
		return http.StatusConflict, conflictMessage(err)
	}

	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return http.StatusNotFound, nf.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}

var notFound = []error{
	domain.ErrUserNotFound,
	domain.ErrRoomNotFound,
	domain.ErrCarNotFound,
	domain.ErrBookingNotFound,
	domain.ErrPaymentNotFound,
	domain.ErrConversationNotFound,
	domain.ErrNotificationNotFound,
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return domain.ErrUserExists.Error()
	case errors.Is(err, domain.ErrSuperadminExists):
		return domain.ErrSuperadminExists.Error()
	}
	return domain.ErrCarUnavailable.Error()
}
