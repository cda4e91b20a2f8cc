package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), 400, "invalid payload"},
		{"validation", domain.Invalid("name is required"), 400, "name is required"},
		{"room owned", fmt.Errorf("create room: %w", domain.ErrRoomAlreadyOwned), 400, "You already have a room"},
		{"otp expired", domain.ErrOTPExpired, 400, "invalid or expired code"},
		{"otp mismatch", domain.ErrOTPMismatch, 400, "invalid or expired code"},
		{"otp consumed", domain.ErrOTPConsumed, 400, "invalid or expired code"},
		{"unauthorized", domain.ErrUnauthorized, 401, "unauthorized"},
		{"bad credentials", domain.ErrInvalidCredentials, 401, "invalid credentials"},
		{"forbidden", domain.ErrForbidden, 403, "forbidden"},
		{"disabled", domain.ErrAccountDisabled, 403, "account is disabled"},
		{"room missing", fmt.Errorf("get: %w", domain.ErrRoomNotFound), 404, "room not found"},
		{"car missing", domain.ErrCarNotFound, 404, "car not found"},
		{"email taken", domain.ErrUserExists, 409, "user already exists"},
		{"superadmin exists", domain.ErrSuperadminExists, 409, "superadmin already exists"},
		{"car unavailable", domain.ErrCarUnavailable, 409, "car is not available"},
		{"too soon", domain.ErrResendTooSoon, 429, "code requested too recently"},
		{"otp locked", domain.ErrOTPLocked, 429, "too many attempts, request a new code"},
		{"unexpected", errors.New("pq: connection refused"), 500, "Internal server error"},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response was rewritten: %q", rec.Body.String())
	}
}
