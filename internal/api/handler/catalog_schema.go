package handler

import "github.com/autodealer/showroom/internal/core/domain"

type roomRequest struct {
	Name        string  `json:"name"        validate:"max=120"`
	Description string  `json:"description" validate:"max=2000"`
	Location    string  `json:"location"    validate:"max=200"`
	Phone       *string `json:"phone"       validate:"omitempty,max=30"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,url"`
}

type roomResponse struct {
	Room *domain.Room `json:"room"`
}

type roomsResponse struct {
	Rooms []*domain.Room `json:"rooms"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type carRequest struct {
	Title        string   `json:"title"        validate:"max=200"`
	Brand        string   `json:"brand"        validate:"max=80"`
	Model        string   `json:"model"        validate:"max=80"`
	Year         int      `json:"year"         validate:"omitempty,gte=1900"`
	Price        int64    `json:"price"        validate:"gte=0"`
	Mileage      int      `json:"mileage"      validate:"gte=0"`
	FuelType     string   `json:"fuel_type"    validate:"max=40"`
	Transmission string   `json:"transmission" validate:"max=40"`
	Color        string   `json:"color"        validate:"max=40"`
	Description  string   `json:"description"  validate:"max=5000"`
	Images       []string `json:"images"       validate:"omitempty,max=20,dive,url"`
	Status       string   `json:"status"       validate:"omitempty,oneof=available booked sold"`
}

type carResponse struct {
	Car *domain.Car `json:"car"`
}

type carsResponse struct {
	Cars  []*domain.Car `json:"cars"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
