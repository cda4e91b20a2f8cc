package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

var (
	adminA = domain.Principal{ID: "a1", Role: domain.RoleAdmin}
	adminB = domain.Principal{ID: "a2", Role: domain.RoleAdmin}
	root   = domain.Principal{ID: "s1", Role: domain.RoleSuperadmin}
	buyer  = domain.Principal{ID: "u1", Role: domain.RoleUser}
)

func TestRoomService_CreateOncePerAdmin(t *testing.T) {
	svc := NewRoomService(newStubRoomRepo(), zerolog.Nop())
	ctx := context.Background()

	room, err := svc.Create(ctx, adminA, ports.RoomInput{Name: "Downtown Motors"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if room.OwnerID != "a1" || !room.IsActive {
		t.Fatalf("unexpected room: %+v", room)
	}
	if _, err := svc.Create(ctx, adminA, ports.RoomInput{Name: "Second"}); !errors.Is(err, domain.ErrRoomAlreadyOwned) {
		t.Fatalf("expected ErrRoomAlreadyOwned, got %v", err)
	}
	if _, err := svc.Create(ctx, buyer, ports.RoomInput{Name: "Nope"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a user, got %v", err)
	}
	if _, err := svc.Create(ctx, root, ports.RoomInput{Name: "Nope"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("roles do not inherit: expected ErrForbidden for superadmin, got %v", err)
	}
}

func TestRoomService_InactiveHidden(t *testing.T) {
	repo := newStubRoomRepo(&domain.Room{ID: "r1", OwnerID: "a1", Name: "Hidden", IsActive: false})
	svc := NewRoomService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Get(ctx, nil, "r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("anonymous viewer: expected ErrRoomNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, &adminB, "r1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("other admin: expected ErrRoomNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, &adminA, "r1"); err != nil {
		t.Fatalf("owner: expected room, got %v", err)
	}
	if _, err := svc.Get(ctx, &root, "r1"); err != nil {
		t.Fatalf("superadmin: expected room, got %v", err)
	}

	rooms, total, _ := svc.ListPublic(ctx, domain.RoomFilter{})
	if total != 0 || len(rooms) != 0 {
		t.Fatalf("public listing must exclude inactive rooms")
	}
	if _, total, _ := svc.ListAll(ctx, domain.RoomFilter{}); total != 1 {
		t.Fatalf("admin listing must include inactive rooms")
	}
}

func TestRoomService_UpdateAndDeleteOwnership(t *testing.T) {
	repo := newStubRoomRepo(&domain.Room{ID: "r1", OwnerID: "a1", Name: "Old", IsActive: true})
	svc := NewRoomService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Update(ctx, adminB, "r1", ports.RoomInput{Name: "Stolen"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	room, err := svc.Update(ctx, adminA, "r1", ports.RoomInput{Name: "New"})
	if err != nil || room.Name != "New" {
		t.Fatalf("owner update failed: %v %+v", err, room)
	}
	if err := svc.Delete(ctx, adminB, "r1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, root, "r1"); err != nil {
		t.Fatalf("superadmin delete failed: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected repository delete")
	}
}
