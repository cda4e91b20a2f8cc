package ports

import (
	"context"
	"time"

	"github.com/autodealer/showroom/internal/core/domain"
)

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CreateBookingInput is submitted by a user to book a car.
type CreateBookingInput struct {
	CarID       string
	BookingDate time.Time
	Message     string
}

// BookingService covers booking requests and their review.
type BookingService interface {
	Create(ctx context.Context, p domain.Principal, in CreateBookingInput) (*domain.Booking, error)
	List(ctx context.Context, p domain.Principal, status string, page, limit int) ([]*domain.Booking, int64, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, status domain.BookingStatus) (*domain.Booking, error)
}
