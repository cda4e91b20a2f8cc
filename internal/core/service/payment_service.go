package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// PaymentService records payments and lets superadmins settle them.
type PaymentService struct {
	payments ports.PaymentRepository
	bookings ports.BookingRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewPaymentService(
	payments ports.PaymentRepository,
	bookings ports.BookingRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{payments: payments, bookings: bookings, notifier: notifier, log: log}
}

func (s *PaymentService) Create(ctx context.Context, p domain.Principal, in ports.CreatePaymentInput) (*domain.Payment, error) {
	if in.Amount <= 0 {
		return nil, domain.Invalid("amount must be positive")
	}
	if strings.TrimSpace(in.Method) == "" {
		return nil, domain.Invalid("method is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	var roomID *string
	if in.BookingID != nil {
		b, err := s.bookings.FindByID(ctx, *in.BookingID)
		if err != nil {
			return nil, err
		}
		if b.UserID != p.ID {
			return nil, domain.ErrForbidden
		}
		roomID = &b.RoomID
	}

	reference := in.Reference
	if reference == "" {
		reference = "PAY-" + strings.ToUpper(uuid.NewString()[:8])
	}
	now := time.Now().UTC()
	pay := &domain.Payment{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		BookingID: in.BookingID,
		RoomID:    roomID,
		Amount:    in.Amount,
		Currency:  currency,
		Method:    in.Method,
		Status:    domain.PaymentPending,
		Reference: reference,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return pay, nil
}

// List returns every payment to a superadmin and only the caller's own to anyone else.
func (s *PaymentService) List(ctx context.Context, p domain.Principal, status string, page, limit int) ([]*domain.Payment, int64, error) {
	if status != "" && !validPaymentStatus(status) {
		return nil, 0, domain.Invalid("unknown payment status")
	}
	page, limit = normalizePage(page, limit)
	f := domain.PaymentFilter{Status: status, Page: page, Limit: limit}
	if !domain.Authorize(p, domain.RoleSuperadmin) {
		f.UserID = p.ID
	}
	return s.payments.List(ctx, f)
}

func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error) {
	if !validPaymentStatus(status) {
		return nil, domain.Invalid("unknown payment status")
	}
	pay, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.payments.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	pay.Status = status
	pay.UpdatedAt = time.Now().UTC()

	notifyQuietly(ctx, s.notifier, s.log, ports.NotifyInput{
		UserID:  pay.UserID,
		Title:   "Payment " + status,
		Message: fmt.Sprintf("Payment %s is now %s.", pay.Reference, status),
		Type:    domain.NotifyPayment,
	})
	return pay, nil
}

func validPaymentStatus(s string) bool {
	switch s {
	case domain.PaymentPending, domain.PaymentCompleted, domain.PaymentFailed, domain.PaymentRefunded:
		return true
	}
	return false
}
