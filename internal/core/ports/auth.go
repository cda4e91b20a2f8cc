package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// TokenCodec encodes and decodes the bearer credential carried by every
// protected request.
type TokenCodec interface {
	Encode(subjectID string, role domain.Role) (string, error)
	// Decode returns false when the token is absent, malformed, expired, or
	// its signature does not verify.
	Decode(raw string) (domain.Principal, bool)
}

// ChannelTokens issues and checks short-lived tokens that grant a single
// principal access to a single realtime channel.
type ChannelTokens interface {
	IssueChannel(p domain.Principal, channel string) (string, error)
	VerifyChannel(raw, channel string) (domain.Principal, bool)
}

// SignupInput is the pending account submitted before email verification.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// AuthResult is returned by flows that end with a signed-in user.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService covers signup, login, password recovery and bootstrap.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) error
	VerifySignup(ctx context.Context, email, code string) (*AuthResult, error)
	ResendSignup(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	BootstrapSuperadmin(ctx context.Context, name, email, password string) (*domain.User, error)
}

// PasswordResetRepository persists forgot-password tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, r *domain.PasswordReset) error
	ListActive(ctx context.Context, userID string) ([]*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}
