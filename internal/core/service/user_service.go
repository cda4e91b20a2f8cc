package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// UserService manages accounts after signup.
type UserService struct {
	users ports.UserRepository
	otp   ports.OTPService
	log   zerolog.Logger

	cost int
}

func NewUserService(users ports.UserRepository, otp ports.OTPService, log zerolog.Logger) *UserService {
	return &UserService{users: users, otp: otp, log: log, cost: bcrypt.DefaultCost}
}

func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]*domain.User, int64, error) {
	if f.Role != "" && !domain.IsValidRole(f.Role) {
		return nil, 0, domain.Invalid("unknown role")
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return s.users.List(ctx, f)
}

// Get returns the account to its owner or to a superadmin.
func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	if p.ID != id && !domain.Authorize(p, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, p domain.Principal, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = in.Phone
	}
	if in.AvatarURL != nil {
		user.AvatarURL = in.AvatarURL
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetRole moves an account between user and admin. The superadmin role can
// only be obtained through bootstrap and is never removed here.
func (s *UserService) SetRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, domain.Invalid("unknown role")
	}
	if role == domain.RoleSuperadmin {
		return nil, domain.Invalid("the superadmin role cannot be assigned")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleSuperadmin {
		return nil, domain.ErrForbidden
	}
	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	s.log.Info().Str("user_id", id).Str("role", role).Msg("role changed")
	return user, nil
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleSuperadmin && !active {
		return nil, domain.ErrForbidden
	}
	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if p.ID == id {
		return domain.Invalid("you cannot delete your own account")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleSuperadmin {
		return domain.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Str("by", p.ID).Msg("user deleted")
	return nil
}

func (s *UserService) CreateAdmin(ctx context.Context, in ports.CreateAdminInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("create admin: hash: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Phone:        in.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordChange checks the current password and emails a code that
// confirms the new one.
func (s *UserService) RequestPasswordChange(ctx context.Context, p domain.Principal, current, next string) error {
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := hashPassword(next, s.cost)
	if err != nil {
		return fmt.Errorf("password change: hash: %w", err)
	}
	payload := domain.PasswordChangePayload{UserID: user.ID, PasswordHash: hash}
	return s.otp.Generate(ctx, user.Email, domain.OTPPasswordChange, payload)
}

func (s *UserService) ConfirmPasswordChange(ctx context.Context, p domain.Principal, code string) error {
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	otp, err := s.otp.Verify(ctx, user.Email, code, domain.OTPPasswordChange)
	if err != nil {
		return err
	}
	var pending domain.PasswordChangePayload
	if err := json.Unmarshal(otp.Payload, &pending); err != nil {
		return fmt.Errorf("password change: decode payload: %w", err)
	}
	if pending.UserID != user.ID {
		return domain.ErrOTPMismatch
	}
	if err := s.users.UpdatePassword(ctx, user.ID, pending.PasswordHash); err != nil {
		return fmt.Errorf("password change: %w", err)
	}
	return nil
}
