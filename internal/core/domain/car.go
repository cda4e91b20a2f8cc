package domain

import "time"

// CarStatus is the availability state of a listed vehicle.
type CarStatus = string

const (
	CarAvailable CarStatus = "available"
	CarBooked    CarStatus = "booked"
	CarSold      CarStatus = "sold"
)

// Car is a vehicle listed in a room.
type Car struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        int64     `json:"price"`
	Mileage      int       `json:"mileage"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission"`
	Color        string    `json:"color"`
	Description  string    `json:"description"`
	Images       []string  `json:"images"`
	Status       CarStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CarFilter carries the public car search parameters.
type CarFilter struct {
	RoomID   string
	Brand    string
	Status   string
	MinPrice int64
	MaxPrice int64
	Page     int
	Limit    int
}
