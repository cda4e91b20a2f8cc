package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

const resetTokenTTL = time.Hour

// AuthService implements signup with email verification, login, password
// recovery and the one-time superadmin bootstrap.
type AuthService struct {
	users  ports.UserRepository
	resets ports.PasswordResetRepository
	otp    ports.OTPService
	tokens ports.TokenCodec
	mailer ports.Mailer
	queue  ports.TaskQueue
	log    zerolog.Logger

	now  func() time.Time
	cost int
}

func NewAuthService(
	users ports.UserRepository,
	resets ports.PasswordResetRepository,
	otp ports.OTPService,
	tokens ports.TokenCodec,
	mailer ports.Mailer,
	queue ports.TaskQueue,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		resets: resets,
		otp:    otp,
		tokens: tokens,
		mailer: mailer,
		queue:  queue,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		cost:   bcrypt.DefaultCost,
	}
}

// Signup validates the pending account and emails a verification code. No
// user row exists until VerifySignup succeeds.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) error {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return domain.Invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("signup: %w", err)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return fmt.Errorf("signup: hash password: %w", err)
	}
	payload := domain.SignupPayload{Name: name, Email: email, Phone: in.Phone, PasswordHash: hash}
	return s.otp.Generate(ctx, email, domain.OTPSignup, payload)
}

func (s *AuthService) VerifySignup(ctx context.Context, email, code string) (*ports.AuthResult, error) {
	otp, err := s.otp.Verify(ctx, email, code, domain.OTPSignup)
	if err != nil {
		return nil, err
	}

	var pending domain.SignupPayload
	if err := json.Unmarshal(otp.Payload, &pending); err != nil {
		return nil, fmt.Errorf("verify signup: decode payload: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         domain.RoleUser,
		Phone:        pending.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("account verified")

	return s.signedIn(user)
}

func (s *AuthService) ResendSignup(ctx context.Context, email string) error {
	raw, err := s.otp.Payload(ctx, email, domain.OTPSignup)
	if err != nil {
		return err
	}
	var pending domain.SignupPayload
	if err := json.Unmarshal(raw, &pending); err != nil {
		return fmt.Errorf("resend signup: decode payload: %w", err)
	}
	return s.otp.Generate(ctx, pending.Email, domain.OTPSignup, pending)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return s.signedIn(user)
}

func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.users.FindByID(ctx, p.ID)
}

// ForgotPassword emails a reset token when the account exists. It reports
// success either way so the endpoint does not reveal registered emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("forgot password: token: %w", err)
	}
	token := hex.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.cost)
	if err != nil {
		return fmt.Errorf("forgot password: hash token: %w", err)
	}

	now := s.now()
	reset := &domain.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: string(hash),
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	sendMail(s.queue, s.mailer, s.log, user.Email, "Reset your password",
		fmt.Sprintf("Use this token to reset your password: %s\nIt expires in one hour.", token))
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset password: %w", err)
	}

	active, err := s.resets.ListActive(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	now := s.now()
	var match *domain.PasswordReset
	for _, r := range active {
		if r.UsedAt != nil || !now.Before(r.ExpiresAt) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(r.TokenHash), []byte(token)) == nil {
			match = r
			break
		}
	}
	if match == nil {
		return domain.ErrResetTokenInvalid
	}

	hash, err := hashPassword(newPassword, s.cost)
	if err != nil {
		return fmt.Errorf("reset password: hash: %w", err)
	}
	if err := s.resets.MarkUsed(ctx, match.ID); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// BootstrapSuperadmin creates the first superadmin. The store enforces a
// single superadmin, so concurrent calls cannot both succeed.
func (s *AuthService) BootstrapSuperadmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	exists, err := s.users.ExistsWithRole(ctx, domain.RoleSuperadmin)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if exists {
		return nil, domain.ErrSuperadminExists
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperadmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("superadmin bootstrapped")
	return user, nil
}

func (s *AuthService) signedIn(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Encode(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}
