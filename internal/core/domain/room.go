package domain

import "time"

// Room is a showroom owned by exactly one admin.
type Room struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Phone       *string   `json:"phone,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomFilter narrows room listings. ActiveOnly is forced for public callers.
type RoomFilter struct {
	ActiveOnly bool
	Search     string
	Page       int
	Limit      int
}

// CanManage reports whether p may modify the room: its owning admin or any superadmin.
func (r *Room) CanManage(p Principal) bool {
	if Authorize(p, RoleSuperadmin) {
		return true
	}
	return Authorize(p, RoleAdmin) && r.OwnerID == p.ID
}
