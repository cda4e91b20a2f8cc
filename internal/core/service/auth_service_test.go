package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type authFixture struct {
	svc    *AuthService
	otp    *otpFixture
	users  *stubUserRepo
	resets *stubResetRepo
	mailer *stubMailer
}

func newAuthFixture(users ...*domain.User) *authFixture {
	otp := newOTPFixture(nil)
	repo := newStubUserRepo(users...)
	resets := &stubResetRepo{}
	svc := NewAuthService(repo, resets, otp.svc, stubTokens{}, otp.mailer, &inlineQueue{}, zerolog.Nop())
	svc.cost = bcrypt.MinCost
	svc.now = otp.svc.now
	return &authFixture{svc: svc, otp: otp, users: repo, resets: resets, mailer: otp.mailer}
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func TestAuthService_SignupThenVerify(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	err := f.svc.Signup(ctx, ports.SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if len(f.users.users) != 0 {
		t.Fatalf("no account may exist before verification")
	}

	res, err := f.svc.VerifySignup(ctx, "ana@example.com", f.mailer.lastCode())
	if err != nil {
		t.Fatalf("VerifySignup returned error: %v", err)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", res.User.Role)
	}
	if res.Token != res.User.ID+":"+domain.RoleUser {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_VerifyExpiredCreatesNoAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_ = f.svc.Signup(ctx, ports.SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	code := f.mailer.lastCode()

	later := f.otp.clock.Add(11 * time.Minute)
	f.otp.svc.now = func() time.Time { return later }

	if _, err := f.svc.VerifySignup(ctx, "ana@example.com", code); !domain.IsOTPFailure(err) {
		t.Fatalf("expected an OTP failure, got %v", err)
	}
	if len(f.users.users) != 0 {
		t.Fatalf("expired code must not create an account")
	}
}

func TestAuthService_ResendUsesStoredPayload(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_ = f.svc.Signup(ctx, ports.SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if err := f.svc.ResendSignup(ctx, "ana@example.com"); err != nil {
		t.Fatalf("ResendSignup returned error: %v", err)
	}
	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected two mails, got %d", len(f.mailer.sent))
	}
	res, err := f.svc.VerifySignup(ctx, "ana@example.com", f.mailer.lastCode())
	if err != nil {
		t.Fatalf("VerifySignup after resend: %v", err)
	}
	if res.User.Name != "Ana" {
		t.Fatalf("expected payload to survive resend, got %+v", res.User)
	}

	if err := f.svc.ResendSignup(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound, got %v", err)
	}
}

func TestAuthService_SignupRejectsExistingEmail(t *testing.T) {
	f := newAuthFixture(&domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser})
	err := f.svc.Signup(context.Background(), ports.SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	hash := mustHash(t, "secret1")
	f := newAuthFixture(
		&domain.User{ID: "u1", Email: "ana@example.com", PasswordHash: hash, Role: domain.RoleAdmin, IsActive: true},
		&domain.User{ID: "u2", Email: "off@example.com", PasswordHash: hash, Role: domain.RoleUser},
	)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "ANA@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != "u1:admin" {
		t.Fatalf("unexpected token %q", res.Token)
	}

	cases := []struct {
		email, password string
		want            error
	}{
		{"ana@example.com", "wrong", domain.ErrInvalidCredentials},
		{"ghost@example.com", "secret1", domain.ErrInvalidCredentials},
		{"", "", domain.ErrInvalidCredentials},
		{"off@example.com", "secret1", domain.ErrAccountDisabled},
	}
	for _, tc := range cases {
		if _, err := f.svc.Login(ctx, tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Fatalf("Login(%q): expected %v, got %v", tc.email, tc.want, err)
		}
	}
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(&domain.User{ID: "u1", Email: "ana@example.com", PasswordHash: mustHash(t, "old-pass"), IsActive: true})
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must not error, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("no mail for unknown email")
	}

	if err := f.svc.ForgotPassword(ctx, "ana@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	token := f.mailer.lastToken()
	if token == "" {
		t.Fatalf("expected reset token in mail")
	}

	if err := f.svc.ResetPassword(ctx, "ana@example.com", "bogus", "new-pass"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
	if err := f.svc.ResetPassword(ctx, "ana@example.com", token, "new-pass"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(f.users.users["u1"].PasswordHash), []byte("new-pass")); err != nil {
		t.Fatalf("password not updated")
	}
	if err := f.svc.ResetPassword(ctx, "ana@example.com", token, "other-pass"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("token must be single use, got %v", err)
	}
}

func TestAuthService_BootstrapSuperadminOnce(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, err := f.svc.BootstrapSuperadmin(ctx, "Root", "root@example.com", "secret1")
	if err != nil {
		t.Fatalf("BootstrapSuperadmin returned error: %v", err)
	}
	if u.Role != domain.RoleSuperadmin {
		t.Fatalf("expected superadmin role, got %s", u.Role)
	}
	if _, err := f.svc.BootstrapSuperadmin(ctx, "Other", "other@example.com", "secret1"); !errors.Is(err, domain.ErrSuperadminExists) {
		t.Fatalf("expected ErrSuperadminExists, got %v", err)
	}
}
