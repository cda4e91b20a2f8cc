package handler

import "github.com/autodealer/showroom/internal/core/domain"

type createBookingRequest struct {
	CarID string `json:"car_id" validate:"required"`
	// BookingDate accepts RFC 3339 or a bare YYYY-MM-DD date.
	BookingDate string `json:"booking_date" validate:"required"`
	Message     string `json:"message"      validate:"max=1000"`
}

type bookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected cancelled completed"`
}

type bookingResponse struct {
	Booking *domain.Booking `json:"booking"`
}

type bookingsResponse struct {
	Bookings []*domain.Booking `json:"bookings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type createPaymentRequest struct {
	BookingID *string `json:"booking_id"`
	Amount    int64   `json:"amount"    validate:"gt=0"`
	Currency  string  `json:"currency"  validate:"omitempty,len=3"`
	Method    string  `json:"method"    validate:"required,max=40"`
	Reference string  `json:"reference" validate:"max=80"`
}

type paymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

type paymentResponse struct {
	Payment *domain.Payment `json:"payment"`
}

type paymentsResponse struct {
	Payments []*domain.Payment `json:"payments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}
