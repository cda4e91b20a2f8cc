package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// CarRepository persists vehicles.
type CarRepository interface {
	Create(ctx context.Context, c *domain.Car) error
	FindByID(ctx context.Context, id string) (*domain.Car, error)
	// List only returns cars whose room is active.
	List(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error)
	Update(ctx context.Context, c *domain.Car) error
	SetStatus(ctx context.Context, id string, status domain.CarStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// CarInput carries car fields on create and update.
type CarInput struct {
	Title        string
	Brand        string
	Model        string
	Year         int
	Price        int64
	Mileage      int
	FuelType     string
	Transmission string
	Color        string
	Description  string
	Images       []string
	Status       string
}

// CarService covers vehicle listings.
type CarService interface {
	List(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error)
	// Get hides cars in inactive rooms unless viewer can manage the room.
	Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Car, error)
	Create(ctx context.Context, p domain.Principal, in CarInput) (*domain.Car, error)
	Update(ctx context.Context, p domain.Principal, id string, in CarInput) (*domain.Car, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
