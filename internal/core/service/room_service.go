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

// RoomService manages showrooms. Each admin owns at most one room.
type RoomService struct {
	rooms ports.RoomRepository
	log   zerolog.Logger
}

func NewRoomService(rooms ports.RoomRepository, log zerolog.Logger) *RoomService {
	return &RoomService{rooms: rooms, log: log}
}

func (s *RoomService) ListPublic(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
	f.ActiveOnly = true
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return s.rooms.List(ctx, f)
}

func (s *RoomService) ListAll(ctx context.Context, f domain.RoomFilter) ([]*domain.Room, int64, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return s.rooms.List(ctx, f)
}

// Get hides inactive rooms from everyone except those who can manage them.
func (s *RoomService) Get(ctx context.Context, viewer *domain.Principal, id string) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsActive && (viewer == nil || !room.CanManage(*viewer)) {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *RoomService) Mine(ctx context.Context, p domain.Principal) (*domain.Room, error) {
	return s.rooms.FindByOwner(ctx, p.ID)
}

func (s *RoomService) Create(ctx context.Context, p domain.Principal, in ports.RoomInput) (*domain.Room, error) {
	if !domain.Authorize(p, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("room name is required")
	}

	if _, err := s.rooms.FindByOwner(ctx, p.ID); err == nil {
		return nil, domain.ErrRoomAlreadyOwned
	} else if !errors.Is(err, domain.ErrRoomNotFound) {
		return nil, fmt.Errorf("create room: %w", err)
	}

	now := time.Now().UTC()
	room := &domain.Room{
		ID:          uuid.NewString(),
		OwnerID:     p.ID,
		Name:        name,
		Description: in.Description,
		Location:    in.Location,
		Phone:       in.Phone,
		ImageURL:    in.ImageURL,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Str("room_id", room.ID).Str("owner_id", p.ID).Msg("room created")
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, p domain.Principal, id string, in ports.RoomInput) (*domain.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.CanManage(p) {
		return nil, domain.ErrForbidden
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		room.Name = name
	}
	if in.Description != "" {
		room.Description = in.Description
	}
	if in.Location != "" {
		room.Location = in.Location
	}
	if in.Phone != nil {
		room.Phone = in.Phone
	}
	if in.ImageURL != nil {
		room.ImageURL = in.ImageURL
	}
	room.UpdatedAt = time.Now().UTC()
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

func (s *RoomService) SetActive(ctx context.Context, id string, active bool) (*domain.Room, error) {
	if err := s.rooms.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.rooms.FindByID(ctx, id)
}

// Delete removes the room together with its cars and conversations.
func (s *RoomService) Delete(ctx context.Context, p domain.Principal, id string) error {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !room.CanManage(p) {
		return domain.ErrForbidden
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	s.log.Info().Str("room_id", id).Str("by", p.ID).Msg("room deleted")
	return nil
}
