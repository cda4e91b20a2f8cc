package domain

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus = string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is a user's request to view or reserve a car.
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	CarID       string        `json:"car_id"`
	RoomID      string        `json:"room_id"`
	BookingDate time.Time     `json:"booking_date"`
	Message     string        `json:"message"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingFilter scopes a booking listing. Empty ids mean no restriction.
type BookingFilter struct {
	UserID string
	RoomID string
	Status string
	Page   int
	Limit  int
}

// adminTransitions lists the statuses a room owner may set from each state.
var adminTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected},
	BookingConfirmed: {BookingCompleted, BookingRejected},
}

// userTransitions lists the statuses the booking user may set.
var userTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingCancelled},
	BookingConfirmed: {BookingCancelled},
}

// CanTransition reports whether a caller acting as room owner (asOwner) or as
// the booking user may move the booking from its current status to next.
func (b *Booking) CanTransition(next BookingStatus, asOwner bool) bool {
	table := userTransitions
	if asOwner {
		table = adminTransitions
	}
	for _, allowed := range table[b.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
