package ports

import (
	"context"
	"time"

	"github.com/autodealer/showroom/internal/core/domain"
)

// OTPRepository keeps at most one live passcode per (email, purpose).
type OTPRepository interface {
	// Replace stores o, discarding any previous code for the same pair.
	Replace(ctx context.Context, o *domain.OTP) error
	Find(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTP, error)
	// Consume marks the code consumed if it is still unconsumed. It reports
	// whether this call performed the transition.
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
}

// Cooldown limits how often a key may trigger an action.
type Cooldown interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AttemptCounter counts events per key within a window that starts at the
// first event.
type AttemptCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// OTPService issues and verifies one-time passcodes.
type OTPService interface {
	Generate(ctx context.Context, email string, purpose domain.OTPPurpose, payload any) error
	// Verify returns the consumed passcode, or one of domain.ErrOTPNotFound,
	// ErrOTPExpired, ErrOTPConsumed, ErrOTPMismatch, ErrOTPLocked.
	Verify(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTP, error)
	// Payload returns the payload of the live passcode, for resends.
	Payload(ctx context.Context, email string, purpose domain.OTPPurpose) ([]byte, error)
}
