package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// CarService manages vehicle listings inside rooms.
type CarService struct {
	cars  ports.CarRepository
	rooms ports.RoomRepository
	log   zerolog.Logger
}

func NewCarService(cars ports.CarRepository, rooms ports.RoomRepository, log zerolog.Logger) *CarService {
	return &CarService{cars: cars, rooms: rooms, log: log}
}

func (s *CarService) List(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error) {
	if f.Status != "" && !validCarStatus(f.Status) {
		return nil, 0, domain.Invalid("unknown car status")
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return nil, 0, domain.Invalid("min_price cannot exceed max_price")
	}
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return s.cars.List(ctx, f)
}

// Get applies the room visibility rule of RoomService.Get to the car's room.
func (s *CarService) Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Car, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, car.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrCarNotFound
		}
		return nil, fmt.Errorf("get car: load room: %w", err)
	}
	if !room.IsActive && (viewer == nil || !room.CanManage(*viewer)) {
		return nil, domain.ErrCarNotFound
	}
	return car, nil
}

// Create lists a car in the calling admin's own room.
func (s *CarService) Create(ctx context.Context, p domain.Principal, in ports.CarInput) (*domain.Car, error) {
	room, err := s.rooms.FindByOwner(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.Invalid("create a room before listing cars")
		}
		return nil, fmt.Errorf("create car: %w", err)
	}
	if err := validateCarInput(in, true); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.CarAvailable
	}
	now := time.Now().UTC()
	car := &domain.Car{
		ID:           uuid.NewString(),
		RoomID:       room.ID,
		Title:        strings.TrimSpace(in.Title),
		Brand:        in.Brand,
		Model:        in.Model,
		Year:         in.Year,
		Price:        in.Price,
		Mileage:      in.Mileage,
		FuelType:     in.FuelType,
		Transmission: in.Transmission,
		Color:        in.Color,
		Description:  in.Description,
		Images:       in.Images,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if car.Images == nil {
		car.Images = []string{}
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}
	return car, nil
}

func (s *CarService) Update(ctx context.Context, p domain.Principal, id string, in ports.CarInput) (*domain.Car, error) {
	car, err := s.managed(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := validateCarInput(in, false); err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		car.Title = t
	}
	if in.Brand != "" {
		car.Brand = in.Brand
	}
	if in.Model != "" {
		car.Model = in.Model
	}
	if in.Year != 0 {
		car.Year = in.Year
	}
	if in.Price != 0 {
		car.Price = in.Price
	}
	if in.Mileage != 0 {
		car.Mileage = in.Mileage
	}
	if in.FuelType != "" {
		car.FuelType = in.FuelType
	}
	if in.Transmission != "" {
		car.Transmission = in.Transmission
	}
	if in.Color != "" {
		car.Color = in.Color
	}
	if in.Description != "" {
		car.Description = in.Description
	}
	if in.Images != nil {
		car.Images = in.Images
	}
	if in.Status != "" {
		car.Status = in.Status
	}
	car.UpdatedAt = time.Now().UTC()

	if err := s.cars.Update(ctx, car); err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}
	return car, nil
}

func (s *CarService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if _, err := s.managed(ctx, p, id); err != nil {
		return err
	}
	if err := s.cars.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}

// managed loads a car and checks that p may modify it through its room.
func (s *CarService) managed(ctx context.Context, p domain.Principal, id string) (*domain.Car, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.FindByID(ctx, car.RoomID)
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if !room.CanManage(p) {
		return nil, domain.ErrForbidden
	}
	return car, nil
}

func validateCarInput(in ports.CarInput, create bool) error {
	if create {
		if strings.TrimSpace(in.Title) == "" || in.Brand == "" || in.Model == "" {
			return domain.Invalid("title, brand and model are required")
		}
		if in.Price <= 0 {
			return domain.Invalid("price must be positive")
		}
	}
	if in.Price < 0 || in.Mileage < 0 {
		return domain.Invalid("price and mileage cannot be negative")
	}
	if in.Year != 0 && (in.Year < 1900 || in.Year > time.Now().Year()+1) {
		return domain.Invalid("year is out of range")
	}
	if in.Status != "" && !validCarStatus(in.Status) {
		return domain.Invalid("unknown car status")
	}
	return nil
}

func validCarStatus(s string) bool {
	switch s {
	case domain.CarAvailable, domain.CarBooked, domain.CarSold:
		return true
	}
	return false
}
