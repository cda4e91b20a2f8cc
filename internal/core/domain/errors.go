package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrSuperadminExists     = errors.New("superadmin already exists")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomAlreadyOwned     = errors.New("you already have a room")
	ErrCarNotFound          = errors.New("car not found")
	ErrCarUnavailable       = errors.New("car is not available")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrOTPNotFound   = errors.New("otp not found")
	ErrOTPExpired    = errors.New("otp expired")
	ErrOTPConsumed   = errors.New("otp already used")
	ErrOTPMismatch   = errors.New("otp mismatch")
	ErrResendTooSoon = errors.New("code requested too recently")
	ErrOTPLocked     = errors.New("too many attempts, request a new code")

	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// ValidationError carries a human-readable message surfaced to the client as 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsOTPFailure reports whether err is one of the OTP verification failures.
func IsOTPFailure(err error) bool {
	return errors.Is(err, ErrOTPNotFound) ||
		errors.Is(err, ErrOTPExpired) ||
		errors.Is(err, ErrOTPConsumed) ||
		errors.Is(err, ErrOTPMismatch)
}
