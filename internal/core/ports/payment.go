package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// PaymentRepository persists payments.
type PaymentRepository interface {
	Create(ctx context.Context, pay *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, f domain.PaymentFilter) ([]*domain.Payment, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error
	Completed(ctx context.Context) (count, total int64, err error)
}

// CreatePaymentInput is submitted by a user.
type CreatePaymentInput struct {
	BookingID *string
	Amount    int64
	Currency  string
	Method    string
	Reference string
}

// PaymentService covers payment records.
type PaymentService interface {
	Create(ctx context.Context, p domain.Principal, in CreatePaymentInput) (*domain.Payment, error)
	List(ctx context.Context, p domain.Principal, status string, page, limit int) ([]*domain.Payment, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Payment, error)
}
