package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// RoomRepository persists showrooms.
type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	FindByID(ctx context.Context, id string) (*domain.Room, error)
	FindByOwner(ctx context.Context, ownerID string) (*domain.Room, error)
	List(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error)
	Update(ctx context.Context, r *domain.Room) error
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes the room with its cars, bookings and conversations in one transaction.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (total, active int64, err error)
}

// RoomInput carries room fields on create and update.
type RoomInput struct {
	Name        string
	Description string
	Location    string
	Phone       *string
	ImageURL    *string
}

// RoomService covers showroom management.
type RoomService interface {
	ListPublic(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error)
	ListAll(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error)
	Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Room, error)
	Mine(ctx context.Context, p domain.Principal) (*domain.Room, error)
	Create(ctx context.Context, p domain.Principal, in RoomInput) (*domain.Room, error)
	Update(ctx context.Context, p domain.Principal, id string, in RoomInput) (*domain.Room, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Room, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
