package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 100
	minPasswordLength = 6
)

// normalizePage clamps pagination to a 1-based page and a bounded page size.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return domain.Invalid("a valid email is required")
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return domain.Invalid("password must be at least 6 characters")
	}
	return nil
}

func hashPassword(pw string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// sendMail schedules an email on the task queue. Delivery failures are
// logged by the queue and never reach the caller.
func sendMail(q ports.TaskQueue, m ports.Mailer, log zerolog.Logger, to, subject, body string) {
	if m == nil {
		return
	}
	ok := q.Enqueue(ports.Task{
		Name: "mail.send",
		Key:  to,
		Run: func(ctx context.Context) error {
			return m.Send(ctx, to, subject, body)
		},
	})
	if !ok {
		log.Warn().Str("to", to).Str("subject", subject).Msg("mail task dropped")
	}
}

// notifyQuietly delivers a notification and only logs failures; callers use
// it after their primary write has already succeeded.
func notifyQuietly(ctx context.Context, n ports.Notifier, log zerolog.Logger, in ports.NotifyInput) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, in); err != nil {
		log.Warn().Err(err).Str("user_id", in.UserID).Str("type", in.Type).Msg("notification failed")
	}
}

func strPtr(s string) *string { return &s }
