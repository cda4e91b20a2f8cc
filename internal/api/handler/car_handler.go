package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// CarHandler handles HTTP requests for car listings.
type CarHandler struct {
	cars ports.CarService
}

// NewCarHandler creates a CarHandler backed by the given service.
func NewCarHandler(cars ports.CarService) *CarHandler {
	return &CarHandler{cars: cars}
}

// List searches cars in active rooms.
//
// @Summary      Search cars
// @Tags         cars
// @Produce      json
// @Param        room_id    query     string  false  "Room ID"
// @Param        brand      query     string  false  "Brand, case-insensitive"
// @Param        status     query     string  false  "available, booked or sold"
// @Param        min_price  query     int     false  "Minimum price"
// @Param        max_price  query     int     false  "Maximum price"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  carsResponse
// @Failure      400        {object}  errorResponse
// @Router       /api/cars [get]
func (h *CarHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	f := domain.CarFilter{
		RoomID: c.QueryParam("room_id"),
		Brand:  c.QueryParam("brand"),
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	}
	err = echo.QueryParamsBinder(c).
		Int64("min_price", &f.MinPrice).
		Int64("max_price", &f.MaxPrice).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "min_price and max_price must be integers")
	}

	cars, total, err := h.cars.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carsResponse{Cars: cars, Total: total, Page: page, Limit: limit})
}

// Get returns one car. Cars in an inactive room are visible only to its managers.
//
// @Summary      Get a car
// @Tags         cars
// @Produce      json
// @Param        id   path      string  true  "Car ID"
// @Success      200  {object}  carResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cars/{id} [get]
func (h *CarHandler) Get(c echo.Context) error {
	car, err := h.cars.Get(c.Request().Context(), viewer(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carResponse{Car: car})
}

// Create lists a car in the calling admin's room.
//
// @Summary      Create a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      carRequest  true  "Car details"
// @Success      201   {object}  carResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/cars [post]
func (h *CarHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req carRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	car, err := h.cars.Create(c.Request().Context(), p, toCarInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, carResponse{Car: car})
}

// Update handles PUT /api/cars/:id.
//
// @Summary      Update a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Car ID"
// @Param        body  body      carRequest  true  "Fields to change"
// @Success      200   {object}  carResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/cars/{id} [put]
func (h *CarHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req carRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	car, err := h.cars.Update(c.Request().Context(), p, c.Param("id"), toCarInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, carResponse{Car: car})
}

// Delete handles DELETE /api/cars/:id.
//
// @Summary      Delete a car
// @Tags         cars
// @Security     BearerAuth
// @Param        id  path  string  true  "Car ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/cars/{id} [delete]
func (h *CarHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.cars.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
