package handler

import "github.com/autodealer/showroom/internal/core/ports"

func toRoomInput(r roomRequest) ports.RoomInput {
	return ports.RoomInput{
		Name:        r.Name,
		Description: r.Description,
		Location:    r.Location,
		Phone:       r.Phone,
		ImageURL:    r.ImageURL,
	}
}

func toCarInput(r carRequest) ports.CarInput {
	return ports.CarInput{
		Title:        r.Title,
		Brand:        r.Brand,
		Model:        r.Model,
		Year:         r.Year,
		Price:        r.Price,
		Mileage:      r.Mileage,
		FuelType:     r.FuelType,
		Transmission: r.Transmission,
		Color:        r.Color,
		Description:  r.Description,
		Images:       r.Images,
		Status:       r.Status,
	}
}
