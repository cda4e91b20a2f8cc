package domain

import "time"

// Role is one of three flat, mutually exclusive principal roles.
type Role = string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// IsValidRole reports whether r names one of the known roles.
func IsValidRole(r string) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Principal is the identity decoded from a bearer token.
type Principal struct {
	ID   string
	Role Role
}

// Authorize reports whether the principal's role is exactly one of allowed.
// Roles do not inherit from each other: a superadmin does not satisfy a
// check that only lists admin.
func Authorize(p Principal, allowed ...Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}

// User models an account in the marketplace.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Phone        *string   `json:"phone,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

// PasswordReset is a single-use token issued by the forgot-password flow.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
