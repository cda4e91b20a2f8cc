package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type stubRoomService struct {
	ports.RoomService
	listPublic func(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error)
	get        func(ctx context.Context, viewer *domain.Principal, id string) (*domain.Room, error)
	create     func(ctx context.Context, p domain.Principal, in ports.RoomInput) (*domain.Room, error)
}

func (s *stubRoomService) ListPublic(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
	return s.listPublic(ctx, f)
}

func (s *stubRoomService) Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Room, error) {
	return s.get(ctx, viewer, id)
}

func (s *stubRoomService) Create(ctx context.Context, p domain.Principal, in ports.RoomInput) (*domain.Room, error) {
	return s.create(ctx, p, in)
}

type stubCarService struct {
	ports.CarService
	list func(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error)
	get  func(ctx context.Context, viewer *domain.Principal, id string) (*domain.Car, error)
}

func (s *stubCarService) Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Car, error) {
	return s.get(ctx, viewer, id)
}

func (s *stubCarService) List(ctx context.Context, f domain.CarFilter) ([]*domain.Car, int64, error) {
	return s.list(ctx, f)
}

func TestRoomHandler_List_NormalizesPaging(t *testing.T) {
	var got domain.RoomFilter
	h := NewRoomHandler(&stubRoomService{
		listPublic: func(_ context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
			got = f
			return []*domain.Room{{ID: "r1"}}, 41, nil
		},
	})

	rec, err := do(t, h.List, call{method: http.MethodGet, target: "/api/rooms?search=north&page=0&limit=500"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomFilter{Search: "north", Page: 1, Limit: maxLimit}, got)

	var resp roomsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(41), resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Rooms, 1)
}

func TestRoomHandler_List_BadPage(t *testing.T) {
	h := NewRoomHandler(&stubRoomService{})

	_, err := do(t, h.List, call{method: http.MethodGet, target: "/api/rooms?page=two"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestRoomHandler_Get_PassesViewer(t *testing.T) {
	var viewers []*domain.Principal
	h := NewRoomHandler(&stubRoomService{
		get: func(_ context.Context, v *domain.Principal, id string) (*domain.Room, error) {
			viewers = append(viewers, v)
			return &domain.Room{ID: id}, nil
		},
	})

	_, err := do(t, h.Get, call{method: http.MethodGet, target: "/api/rooms/r1"}, "id", "r1")
	require.NoError(t, err)
	_, err = do(t, h.Get, call{method: http.MethodGet, target: "/api/rooms/r1", token: "super"}, "id", "r1")
	require.NoError(t, err)

	require.Len(t, viewers, 2)
	assert.Nil(t, viewers[0])
	require.NotNil(t, viewers[1])
	assert.Equal(t, domain.RoleSuperadmin, viewers[1].Role)
}

func TestRoomHandler_Create(t *testing.T) {
	h := NewRoomHandler(&stubRoomService{
		create: func(_ context.Context, p domain.Principal, in ports.RoomInput) (*domain.Room, error) {
			assert.Equal(t, "a1", p.ID)
			require.NotNil(t, in.Phone)
			assert.Equal(t, "555-0100", *in.Phone)
			assert.Nil(t, in.ImageURL)
			return &domain.Room{ID: "r1", OwnerID: p.ID, Name: in.Name, IsActive: true}, nil
		},
	})

	rec, err := do(t, h.Create, call{
		method: http.MethodPost,
		target: "/api/rooms",
		body:   `{"name":"North Motors","location":"Oslo","phone":"555-0100"}`,
		token:  "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"room":{"id":"r1"`)
}

func TestRoomHandler_Create_AlreadyOwned(t *testing.T) {
	h := NewRoomHandler(&stubRoomService{
		create: func(context.Context, domain.Principal, ports.RoomInput) (*domain.Room, error) {
			return nil, domain.ErrRoomAlreadyOwned
		},
	})

	_, err := do(t, h.Create, call{method: http.MethodPost, target: "/api/rooms", body: `{"name":"Second"}`, token: "admin"})
	assert.ErrorIs(t, err, domain.ErrRoomAlreadyOwned)
}

func TestCarHandler_List_Filters(t *testing.T) {
	var got domain.CarFilter
	h := NewCarHandler(&stubCarService{
		list: func(_ context.Context, f domain.CarFilter) ([]*domain.Car, int64, error) {
			got = f
			return nil, 0, nil
		},
	})

	_, err := do(t, h.List, call{
		method: http.MethodGet,
		target: "/api/cars?room_id=r1&brand=Volvo&status=available&min_price=1000&max_price=5000&limit=5",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CarFilter{
		RoomID:   "r1",
		Brand:    "Volvo",
		Status:   "available",
		MinPrice: 1000,
		MaxPrice: 5000,
		Page:     1,
		Limit:    5,
	}, got)
}

func TestCarHandler_List_BadPrice(t *testing.T) {
	h := NewCarHandler(&stubCarService{})

	_, err := do(t, h.List, call{method: http.MethodGet, target: "/api/cars?min_price=cheap"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestCarHandler_Create_RejectsBadStatus(t *testing.T) {
	h := NewCarHandler(&stubCarService{})

	_, err := do(t, h.Create, call{
		method: http.MethodPost,
		target: "/api/cars",
		body:   `{"title":"V70","brand":"Volvo","model":"V70","year":2012,"price":9000,"status":"stolen"}`,
		token:  "admin",
	})
	assert.True(t, isValidation(err), "got %v", err)
}

func TestCarHandler_Get_PassesViewer(t *testing.T) {
	var seen *domain.Principal
	h := NewCarHandler(&stubCarService{
		get: func(_ context.Context, viewer *domain.Principal, id string) (*domain.Car, error) {
			seen = viewer
			return &domain.Car{ID: id}, nil
		},
	})

	_, err := do(t, h.Get, call{method: http.MethodGet, target: "/api/cars/c1"}, "id", "c1")
	require.NoError(t, err)
	assert.Nil(t, seen)

	_, err = do(t, h.Get, call{method: http.MethodGet, target: "/api/cars/c1", token: "admin"}, "id", "c1")
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "a1", seen.ID)
}
