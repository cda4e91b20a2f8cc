package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

func TestCarService_CreateInOwnRoom(t *testing.T) {
	rooms := newStubRoomRepo(&domain.Room{ID: "r1", OwnerID: "a1", IsActive: true})
	cars := newStubCarRepo()
	svc := NewCarService(cars, rooms, zerolog.Nop())
	ctx := context.Background()

	in := ports.CarInput{Title: "Civic", Brand: "Honda", Model: "Civic", Year: 2020, Price: 18000}
	car, err := svc.Create(ctx, adminA, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if car.RoomID != "r1" || car.Status != domain.CarAvailable {
		t.Fatalf("unexpected car: %+v", car)
	}

	var verr *domain.ValidationError
	if _, err := svc.Create(ctx, adminB, in); !errors.As(err, &verr) {
		t.Fatalf("admin without a room: expected validation error, got %v", err)
	}
	if _, err := svc.Create(ctx, adminA, ports.CarInput{Title: "x", Brand: "y", Model: "z", Price: -1}); !errors.As(err, &verr) {
		t.Fatalf("negative price: expected validation error, got %v", err)
	}
}

func TestCarService_UpdateDeleteRequireRoomManager(t *testing.T) {
	rooms := newStubRoomRepo(&domain.Room{ID: "r1", OwnerID: "a1", IsActive: true})
	cars := newStubCarRepo(&domain.Car{ID: "c1", RoomID: "r1", Title: "Civic", Price: 100, Status: domain.CarAvailable})
	svc := NewCarService(cars, rooms, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Update(ctx, adminB, "c1", ports.CarInput{Price: 200}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	car, err := svc.Update(ctx, root, "c1", ports.CarInput{Price: 200})
	if err != nil || car.Price != 200 || car.Title != "Civic" {
		t.Fatalf("superadmin partial update failed: %v %+v", err, car)
	}
	if err := svc.Delete(ctx, adminA, "c1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, nil, "c1"); !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
}

func TestCarService_GetHidesInactiveRooms(t *testing.T) {
	rooms := newStubRoomRepo(&domain.Room{ID: "r1", OwnerID: "a1", IsActive: false})
	cars := newStubCarRepo(&domain.Car{ID: "c1", RoomID: "r1", Title: "Civic", Status: domain.CarAvailable})
	svc := NewCarService(cars, rooms, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Get(ctx, nil, "c1"); !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("anonymous viewer: expected ErrCarNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, &buyer, "c1"); !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("user viewer: expected ErrCarNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, &adminA, "c1"); err != nil {
		t.Fatalf("room owner must see the car: %v", err)
	}
	if _, err := svc.Get(ctx, &root, "c1"); err != nil {
		t.Fatalf("superadmin must see the car: %v", err)
	}
}

func TestCarService_ListValidation(t *testing.T) {
	svc := NewCarService(newStubCarRepo(), newStubRoomRepo(), zerolog.Nop())
	var verr *domain.ValidationError
	if _, _, err := svc.List(context.Background(), domain.CarFilter{MinPrice: 10, MaxPrice: 5}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := svc.List(context.Background(), domain.CarFilter{Status: "leased"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
