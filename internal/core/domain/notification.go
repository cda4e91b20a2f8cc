package domain

import "time"

// Notification is a per-user inbox entry.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotifyBooking = "booking"
	NotifyPayment = "payment"
	NotifyChat    = "chat"
	NotifySystem  = "system"
)
