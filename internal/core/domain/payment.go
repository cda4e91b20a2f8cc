package domain

import "time"

// PaymentStatus is the settlement state of a payment.
type PaymentStatus = string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment records money moving from a user, optionally tied to a booking.
type Payment struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	BookingID *string       `json:"booking_id,omitempty"`
	RoomID    *string       `json:"room_id,omitempty"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Method    string        `json:"method"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PaymentFilter scopes a payment listing.
type PaymentFilter struct {
	UserID string
	Status string
	Page   int
	Limit  int
}
