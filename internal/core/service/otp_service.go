package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/pkg/metrics"
)

// OTPConfig tunes passcode issuance.
type OTPConfig struct {
	TTL    time.Duration
	Length int
	// MaxAttempts caps verification attempts per live code. Zero disables it.
	MaxAttempts int
}

// OTPService issues single-use numeric passcodes and emails them.
type OTPService struct {
	repo     ports.OTPRepository
	cooldown ports.Cooldown
	attempts ports.AttemptCounter
	mailer   ports.Mailer
	queue    ports.TaskQueue
	cfg      OTPConfig
	log      zerolog.Logger

	now  func() time.Time
	cost int
}

// NewOTPService builds the service. cooldown may be nil to disable resend throttling.
func NewOTPService(
	repo ports.OTPRepository,
	cooldown ports.Cooldown,
	mailer ports.Mailer,
	queue ports.TaskQueue,
	cfg OTPConfig,
	log zerolog.Logger,
) *OTPService {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Length < 4 {
		cfg.Length = 6
	}
	return &OTPService{
		repo:     repo,
		cooldown: cooldown,
		mailer:   mailer,
		queue:    queue,
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		cost:     bcrypt.DefaultCost,
	}
}

// WithAttemptCounter enables the per-code verification limit.
func (s *OTPService) WithAttemptCounter(c ports.AttemptCounter) *OTPService {
	s.attempts = c
	return s
}

func attemptKey(email string, purpose domain.OTPPurpose) string {
	return "otp:attempts:" + purpose + ":" + email
}

func (s *OTPService) Generate(ctx context.Context, email string, purpose domain.OTPPurpose, payload any) error {
	email = normalizeEmail(email)

	if s.cooldown != nil {
		ok, err := s.cooldown.Allow(ctx, "otp:"+purpose+":"+email)
		if err != nil {
			s.log.Warn().Err(err).Str("purpose", purpose).Msg("otp cooldown check failed")
		} else if !ok {
			metrics.OTPTotal.WithLabelValues(purpose, "throttled").Inc()
			return domain.ErrResendTooSoon
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal otp payload: %w", err)
	}

	code, err := randomDigits(s.cfg.Length)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}

	now := s.now()
	otp := &domain.OTP{
		ID:        uuid.NewString(),
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(hash),
		Payload:   raw,
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	s.resetAttempts(ctx, email, purpose)
	metrics.OTPTotal.WithLabelValues(purpose, "issued").Inc()

	subject, body := otpMessage(purpose, code, s.cfg.TTL)
	sendMail(s.queue, s.mailer, s.log, email, subject, body)
	return nil
}

// Verify checks code against the live passcode for the pair. The first
// successful call consumes it; every later call reports ErrOTPConsumed.
func (s *OTPService) Verify(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OTP, error) {
	email = normalizeEmail(email)

	otp, err := s.repo.Find(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			metrics.OTPTotal.WithLabelValues(purpose, "not_found").Inc()
		}
		return nil, err
	}

	now := s.now()
	switch otp.State(now) {
	case domain.OTPConsumed:
		metrics.OTPTotal.WithLabelValues(purpose, "consumed").Inc()
		return nil, domain.ErrOTPConsumed
	case domain.OTPExpired:
		metrics.OTPTotal.WithLabelValues(purpose, "expired").Inc()
		return nil, domain.ErrOTPExpired
	}

	if err := s.countAttempt(ctx, email, purpose); err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		metrics.OTPTotal.WithLabelValues(purpose, "mismatch").Inc()
		return nil, domain.ErrOTPMismatch
	}

	consumed, err := s.repo.Consume(ctx, otp.ID, now)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		metrics.OTPTotal.WithLabelValues(purpose, "consumed").Inc()
		return nil, domain.ErrOTPConsumed
	}
	otp.ConsumedAt = &now
	s.resetAttempts(ctx, email, purpose)
	metrics.OTPTotal.WithLabelValues(purpose, "verified").Inc()
	return otp, nil
}

// countAttempt records one verification attempt and fails once the live code
// has used up MaxAttempts. The counter is atomic, so concurrent guesses share
// the same budget.
func (s *OTPService) countAttempt(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	if s.attempts == nil || s.cfg.MaxAttempts <= 0 {
		return nil
	}
	n, err := s.attempts.Incr(ctx, attemptKey(email, purpose), s.cfg.TTL)
	if err != nil {
		s.log.Warn().Err(err).Str("purpose", purpose).Msg("otp attempt count failed")
		return nil
	}
	if n > int64(s.cfg.MaxAttempts) {
		metrics.OTPTotal.WithLabelValues(purpose, "locked").Inc()
		return domain.ErrOTPLocked
	}
	return nil
}

func (s *OTPService) resetAttempts(ctx context.Context, email string, purpose domain.OTPPurpose) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, attemptKey(email, purpose)); err != nil {
		s.log.Warn().Err(err).Str("purpose", purpose).Msg("otp attempt counter not reset")
	}
}

func (s *OTPService) Payload(ctx context.Context, email string, purpose domain.OTPPurpose) ([]byte, error) {
	otp, err := s.repo.Find(ctx, normalizeEmail(email), purpose)
	if err != nil {
		return nil, err
	}
	if otp.State(s.now()) == domain.OTPConsumed {
		return nil, domain.ErrOTPConsumed
	}
	return otp.Payload, nil
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

func otpMessage(purpose domain.OTPPurpose, code string, ttl time.Duration) (string, string) {
	minutes := int(ttl.Minutes())
	switch purpose {
	case domain.OTPPasswordChange:
		return "Confirm your password change",
			fmt.Sprintf("Your password change code is %s. It expires in %d minutes.", code, minutes)
	default:
		return "Verify your email",
			fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, minutes)
	}
}
