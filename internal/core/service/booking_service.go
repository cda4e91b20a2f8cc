package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/pkg/metrics"
)

// BookingService handles booking requests and their review by room owners.
type BookingService struct {
	bookings ports.BookingRepository
	cars     ports.CarRepository
	rooms    ports.RoomRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	cars ports.CarRepository,
	rooms ports.RoomRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{bookings: bookings, cars: cars, rooms: rooms, notifier: notifier, log: log}
}

func (s *BookingService) Create(ctx context.Context, p domain.Principal, in ports.CreateBookingInput) (*domain.Booking, error) {
	if !domain.Authorize(p, domain.RoleUser) {
		return nil, domain.ErrForbidden
	}
	if in.BookingDate.IsZero() {
		return nil, domain.Invalid("booking_date is required")
	}

	car, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		return nil, err
	}
	if car.Status != domain.CarAvailable {
		return nil, domain.ErrCarUnavailable
	}
	room, err := s.rooms.FindByID(ctx, car.RoomID)
	if err != nil {
		return nil, fmt.Errorf("create booking: load room: %w", err)
	}
	if !room.IsActive {
		return nil, domain.ErrCarUnavailable
	}

	now := time.Now().UTC()
	b := &domain.Booking{
		ID:          uuid.NewString(),
		UserID:      p.ID,
		CarID:       car.ID,
		RoomID:      room.ID,
		BookingDate: in.BookingDate.UTC(),
		Message:     in.Message,
		Status:      domain.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	metrics.BookingsCreatedTotal.Inc()

	notifyQuietly(ctx, s.notifier, s.log, ports.NotifyInput{
		UserID:  room.OwnerID,
		Title:   "New booking request",
		Message: fmt.Sprintf("A customer requested %s on %s.", car.Title, b.BookingDate.Format("2006-01-02")),
		Type:    domain.NotifyBooking,
		Link:    strPtr("/bookings/" + b.ID),
	})
	return b, nil
}

// List scopes results by role: users see their own bookings, admins see
// their room's bookings and superadmins see everything.
func (s *BookingService) List(ctx context.Context, p domain.Principal, status string, page, limit int) ([]*domain.Booking, int64, error) {
	if status != "" && !validBookingStatus(status) {
		return nil, 0, domain.Invalid("unknown booking status")
	}
	page, limit = normalizePage(page, limit)
	f := domain.BookingFilter{Status: status, Page: page, Limit: limit}

	switch p.Role {
	case domain.RoleSuperadmin:
	case domain.RoleAdmin:
		room, err := s.rooms.FindByOwner(ctx, p.ID)
		if err != nil {
			if errors.Is(err, domain.ErrRoomNotFound) {
				return []*domain.Booking{}, 0, nil
			}
			return nil, 0, fmt.Errorf("list bookings: %w", err)
		}
		f.RoomID = room.ID
	default:
		f.UserID = p.ID
	}
	return s.bookings.List(ctx, f)
}

func (s *BookingService) UpdateStatus(ctx context.Context, p domain.Principal, id string, next domain.BookingStatus) (*domain.Booking, error) {
	if !validBookingStatus(next) {
		return nil, domain.Invalid("unknown booking status")
	}
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, b.RoomID)
	if err != nil {
		return nil, fmt.Errorf("update booking: load room: %w", err)
	}

	asOwner := room.CanManage(p)
	if !asOwner && b.UserID != p.ID {
		return nil, domain.ErrForbidden
	}
	if !b.CanTransition(next, asOwner) {
		return nil, domain.Invalid(fmt.Sprintf("cannot change booking from %s to %s", b.Status, next))
	}
	if next == domain.BookingConfirmed {
		car, err := s.cars.FindByID(ctx, b.CarID)
		if err != nil {
			return nil, fmt.Errorf("update booking: load car: %w", err)
		}
		if car.Status != domain.CarAvailable {
			return nil, domain.ErrCarUnavailable
		}
	}

	prev := b.Status
	if err := s.bookings.UpdateStatus(ctx, b.ID, next); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()

	if carStatus, ok := carStatusFor(prev, next); ok {
		if err := s.cars.SetStatus(ctx, b.CarID, carStatus); err != nil {
			s.log.Warn().Err(err).Str("car_id", b.CarID).Str("status", carStatus).Msg("car status not updated")
		}
	}

	recipient := room.OwnerID
	if asOwner {
		recipient = b.UserID
	}
	notifyQuietly(ctx, s.notifier, s.log, ports.NotifyInput{
		UserID:  recipient,
		Title:   "Booking " + next,
		Message: fmt.Sprintf("Booking for %s is now %s.", b.BookingDate.Format("2006-01-02"), next),
		Type:    domain.NotifyBooking,
		Link:    strPtr("/bookings/" + b.ID),
	})
	return b, nil
}

// carStatusFor maps a booking transition to the car availability it implies.
// Only a confirmed booking holds the car, so only leaving confirmed releases it.
func carStatusFor(prev, next domain.BookingStatus) (domain.CarStatus, bool) {
	switch next {
	case domain.BookingConfirmed:
		return domain.CarBooked, true
	case domain.BookingCompleted:
		return domain.CarSold, true
	case domain.BookingRejected, domain.BookingCancelled:
		if prev == domain.BookingConfirmed {
			return domain.CarAvailable, true
		}
	}
	return "", false
}

func validBookingStatus(s string) bool {
	switch s {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingRejected,
		domain.BookingCancelled, domain.BookingCompleted:
		return true
	}
	return false
}
