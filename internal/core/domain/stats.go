package domain

// DashboardStats is the superadmin overview.
type DashboardStats struct {
	UsersByRole       map[string]int64 `json:"users_by_role"`
	Rooms             int64            `json:"rooms"`
	ActiveRooms       int64            `json:"active_rooms"`
	Cars              int64            `json:"cars"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	CompletedPayments int64            `json:"completed_payments"`
	Revenue           int64            `json:"revenue"`
}
