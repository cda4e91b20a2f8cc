package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// RoomHandler handles HTTP requests for rooms.
type RoomHandler struct {
	rooms ports.RoomService
}

// NewRoomHandler creates a RoomHandler backed by the given service.
func NewRoomHandler(rooms ports.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// List is public and only returns active rooms.
//
// @Summary      List active rooms
// @Tags         rooms
// @Produce      json
// @Param        search  query     string  false  "Name or location contains"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  roomsResponse
// @Router       /api/rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	return h.list(c, h.rooms.ListPublic)
}

// ListAll includes inactive rooms.
//
// @Summary      List all rooms
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Name or location contains"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  roomsResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/admin/rooms [get]
func (h *RoomHandler) ListAll(c echo.Context) error {
	return h.list(c, h.rooms.ListAll)
}

type roomLister func(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error)

func (h *RoomHandler) list(c echo.Context, fetch roomLister) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	rooms, total, err := fetch(c.Request().Context(), domain.RoomFilter{Search: c.QueryParam("search"), Page: page, Limit: limit})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roomsResponse{Rooms: rooms, Total: total, Page: page, Limit: limit})
}

// Get handles GET /api/rooms/:id.
//
// @Summary      Get a room
// @Description  Inactive rooms are only visible to their owner and the superadmin.
// @Tags         rooms
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  roomResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	room, err := h.rooms.Get(c.Request().Context(), viewer(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roomResponse{Room: room})
}

// Mine handles GET /api/rooms/mine.
//
// @Summary      Get the caller's room
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roomResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/rooms/mine [get]
func (h *RoomHandler) Mine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	room, err := h.rooms.Mine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roomResponse{Room: room})
}

// Create opens the caller's showroom. An admin owns at most one room.
//
// @Summary      Create a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roomRequest  true  "Room details"
// @Success      201   {object}  roomResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req roomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.Create(c.Request().Context(), p, toRoomInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roomResponse{Room: room})
}

// Update handles PUT /api/rooms/:id.
//
// @Summary      Update a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Room ID"
// @Param        body  body      roomRequest  true  "Fields to change"
// @Success      200   {object}  roomResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/rooms/{id} [put]
func (h *RoomHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req roomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.Update(c.Request().Context(), p, c.Param("id"), toRoomInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roomResponse{Room: room})
}

// SetStatus handles PUT /api/rooms/:id/status.
//
// @Summary      Activate or deactivate a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Room ID"
// @Param        body  body      setStatusRequest  true  "Active flag"
// @Success      200   {object}  roomResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/rooms/{id}/status [put]
func (h *RoomHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.SetActive(c.Request().Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roomResponse{Room: room})
}

// Delete removes the room with its cars, bookings and conversations.
//
// @Summary      Delete a room
// @Tags         rooms
// @Security     BearerAuth
// @Param        id  path  string  true  "Room ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/rooms/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.rooms.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
