package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookings ports.BookingService
}

func NewBookingHandler(bookings ports.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /api/bookings.
//
// @Summary      Book a car
// @Description  The car must be available and its room active. The room owner is notified.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookingRequest  true  "Booking request"
// @Success      201   {object}  bookingResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.BookingDate)
	if err != nil {
		return domain.Invalid("booking_date must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}

	b, err := h.bookings.Create(c.Request().Context(), p, ports.CreateBookingInput{
		CarID:       req.CarID,
		BookingDate: date,
		Message:     req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bookingResponse{Booking: b})
}

// List is scoped by role: users see their own bookings, admins their room's.
//
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Booking status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  bookingsResponse
// @Router       /api/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	bookings, total, err := h.bookings.List(c.Request().Context(), p, c.QueryParam("status"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingsResponse{Bookings: bookings, Total: total, Page: page, Limit: limit})
}

// UpdateStatus handles PUT /api/bookings/:id/status.
//
// @Summary      Change a booking's status
// @Description  Room owners confirm, reject or complete; the booking user may cancel.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Booking ID"
// @Param        body  body      bookingStatusRequest  true  "New status"
// @Success      200   {object}  bookingResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/bookings/{id}/status [put]
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req bookingStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := h.bookings.UpdateStatus(c.Request().Context(), p, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookingResponse{Booking: b})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
