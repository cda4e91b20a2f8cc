package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/ports"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	payments ports.PaymentService
}

func NewPaymentHandler(payments ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create handles POST /api/payments.
//
// @Summary      Record a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPaymentRequest  true  "Payment"
// @Success      201   {object}  paymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	pay, err := h.payments.Create(c.Request().Context(), p, ports.CreatePaymentInput{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, paymentResponse{Payment: pay})
}

// List handles GET /api/payments.
//
// @Summary      List payments
// @Description  Users see their own payments; the superadmin sees all.
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Payment status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  paymentsResponse
// @Router       /api/payments [get]
func (h *PaymentHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	payments, total, err := h.payments.List(c.Request().Context(), p, c.QueryParam("status"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentsResponse{Payments: payments, Total: total, Page: page, Limit: limit})
}

// UpdateStatus handles PUT /api/payments/:id/status.
//
// @Summary      Change a payment's status
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Payment ID"
// @Param        body  body      paymentStatusRequest  true  "New status"
// @Success      200   {object}  paymentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/payments/{id}/status [put]
func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
	var req paymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	pay, err := h.payments.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paymentResponse{Payment: pay})
}
