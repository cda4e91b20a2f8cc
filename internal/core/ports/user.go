package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	ExistsWithRole(ctx context.Context, role domain.Role) (bool, error)
	// Delete removes the user and every row that references it in one transaction.
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

// UpdateProfileInput carries self-service profile edits. Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

// CreateAdminInput is used by a superadmin to provision an admin account.
type CreateAdminInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// UserService covers account management.
type UserService interface {
	List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int64, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, p domain.Principal, in UpdateProfileInput) (*domain.User, error)
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	CreateAdmin(ctx context.Context, in CreateAdminInput) (*domain.User, error)
	RequestPasswordChange(ctx context.Context, p domain.Principal, current, next string) error
	ConfirmPasswordChange(ctx context.Context, p domain.Principal, code string) error
}
