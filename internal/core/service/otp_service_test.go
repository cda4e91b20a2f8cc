package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
)

type otpFixture struct {
	svc    *OTPService
	repo   *stubOTPRepo
	mailer *stubMailer
	clock  *time.Time
}

func newOTPFixture(cooldown *stubCooldown) *otpFixture {
	repo := newStubOTPRepo()
	mailer := &stubMailer{}
	svc := NewOTPService(repo, nil, mailer, &inlineQueue{}, OTPConfig{TTL: 10 * time.Minute, Length: 6}, zerolog.Nop())
	if cooldown != nil {
		svc.cooldown = cooldown
	}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.cost = bcrypt.MinCost
	return &otpFixture{svc: svc, repo: repo, mailer: mailer, clock: &now}
}

func TestOTPService_GenerateAndVerify(t *testing.T) {
	f := newOTPFixture(nil)
	ctx := context.Background()

	if err := f.svc.Generate(ctx, "Ana@Example.com ", domain.OTPSignup, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "ana@example.com" {
		t.Fatalf("expected one mail to the normalized address, got %+v", f.mailer.sent)
	}
	code := f.mailer.lastCode()
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	stored, _ := f.repo.Find(ctx, "ana@example.com", domain.OTPSignup)
	if stored.CodeHash == code {
		t.Fatalf("code must not be stored in clear text")
	}

	otp, err := f.svc.Verify(ctx, "ana@example.com", code, domain.OTPSignup)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if otp.ConsumedAt == nil {
		t.Fatalf("expected verified code to be consumed")
	}
	if string(otp.Payload) != `{"k":"v"}` {
		t.Fatalf("unexpected payload: %s", otp.Payload)
	}

	if _, err := f.svc.Verify(ctx, "ana@example.com", code, domain.OTPSignup); !errors.Is(err, domain.ErrOTPConsumed) {
		t.Fatalf("expected ErrOTPConsumed on second verify, got %v", err)
	}
}

func TestOTPService_VerifyExpired(t *testing.T) {
	f := newOTPFixture(nil)
	ctx := context.Background()

	if err := f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	code := f.mailer.lastCode()

	later := f.clock.Add(10 * time.Minute)
	f.svc.now = func() time.Time { return later }

	if _, err := f.svc.Verify(ctx, "ana@example.com", code, domain.OTPSignup); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired at the expiry instant, got %v", err)
	}
}

func TestOTPService_RegenerateInvalidatesPrevious(t *testing.T) {
	f := newOTPFixture(nil)
	ctx := context.Background()

	_ = f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil)
	first := f.mailer.lastCode()
	_ = f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil)
	second := f.mailer.lastCode()

	if first != second {
		if _, err := f.svc.Verify(ctx, "ana@example.com", first, domain.OTPSignup); !errors.Is(err, domain.ErrOTPMismatch) {
			t.Fatalf("expected old code to be rejected, got %v", err)
		}
	}
	if _, err := f.svc.Verify(ctx, "ana@example.com", second, domain.OTPSignup); err != nil {
		t.Fatalf("expected newest code to verify, got %v", err)
	}
}

func TestOTPService_PurposeIsolation(t *testing.T) {
	f := newOTPFixture(nil)
	ctx := context.Background()

	_ = f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil)
	code := f.mailer.lastCode()

	if _, err := f.svc.Verify(ctx, "ana@example.com", code, domain.OTPPasswordChange); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound for another purpose, got %v", err)
	}
	if _, err := f.svc.Verify(ctx, "ana@example.com", "000000x", domain.OTPSignup); !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}

func TestOTPService_Cooldown(t *testing.T) {
	f := newOTPFixture(&stubCooldown{})
	ctx := context.Background()

	if err := f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil); err != nil {
		t.Fatalf("first Generate returned error: %v", err)
	}
	if err := f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil); !errors.Is(err, domain.ErrResendTooSoon) {
		t.Fatalf("expected ErrResendTooSoon, got %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected a single mail, got %d", len(f.mailer.sent))
	}
}

func TestOTPService_AttemptLimit(t *testing.T) {
	f := newOTPFixture(nil)
	attempts := &stubAttempts{}
	f.svc.cfg.MaxAttempts = 3
	f.svc.WithAttemptCounter(attempts)
	ctx := context.Background()

	if err := f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	code := f.mailer.lastCode()
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Verify(ctx, "ana@example.com", wrong, domain.OTPSignup); !errors.Is(err, domain.ErrOTPMismatch) {
			t.Fatalf("attempt %d: expected ErrOTPMismatch, got %v", i+1, err)
		}
	}
	if _, err := f.svc.Verify(ctx, "ana@example.com", code, domain.OTPSignup); !errors.Is(err, domain.ErrOTPLocked) {
		t.Fatalf("expected ErrOTPLocked once attempts are used up, got %v", err)
	}

	// A fresh code gets a fresh budget.
	if err := f.svc.Generate(ctx, "ana@example.com", domain.OTPSignup, nil); err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
	if _, err := f.svc.Verify(ctx, "ana@example.com", f.mailer.lastCode(), domain.OTPSignup); err != nil {
		t.Fatalf("verify after regenerate: %v", err)
	}
	if len(attempts.counts) != 0 {
		t.Fatalf("successful verify must clear the counter, got %v", attempts.counts)
	}
}

func TestOTPState(t *testing.T) {
	now := time.Now()
	o := &domain.OTP{ExpiresAt: now.Add(time.Minute)}
	if o.State(now) != domain.OTPIssued {
		t.Fatalf("expected issued")
	}
	if o.State(now.Add(time.Minute)) != domain.OTPExpired {
		t.Fatalf("expected expired at the boundary")
	}
	o.ConsumedAt = &now
	if o.State(now.Add(time.Hour)) != domain.OTPConsumed {
		t.Fatalf("consumption must win over expiry")
	}
}
