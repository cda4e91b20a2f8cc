package domain

import "testing"

func TestAuthorize_NoHierarchy(t *testing.T) {
	cases := []struct {
		role    Role
		allowed []Role
		want    bool
	}{
		{RoleUser, []Role{RoleUser}, true},
		{RoleAdmin, []Role{RoleUser, RoleAdmin}, true},
		{RoleSuperadmin, []Role{RoleAdmin}, false},
		{RoleAdmin, []Role{RoleUser}, false},
		{RoleSuperadmin, nil, false},
		{"", []Role{RoleUser}, false},
	}
	for _, tc := range cases {
		if got := Authorize(Principal{ID: "x", Role: tc.role}, tc.allowed...); got != tc.want {
			t.Fatalf("Authorize(%q, %v) = %v, want %v", tc.role, tc.allowed, got, tc.want)
		}
	}
}

func TestRoomCanManage(t *testing.T) {
	r := &Room{OwnerID: "a1"}
	if !r.CanManage(Principal{ID: "a1", Role: RoleAdmin}) {
		t.Fatalf("owner must manage")
	}
	if r.CanManage(Principal{ID: "a2", Role: RoleAdmin}) {
		t.Fatalf("other admin must not manage")
	}
	if r.CanManage(Principal{ID: "a1", Role: RoleUser}) {
		t.Fatalf("a user id matching the owner is not enough")
	}
	if !r.CanManage(Principal{ID: "s1", Role: RoleSuperadmin}) {
		t.Fatalf("superadmin must manage")
	}
}

func TestBookingCanTransition(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		asOwner  bool
		want     bool
	}{
		{BookingPending, BookingConfirmed, true, true},
		{BookingPending, BookingRejected, true, true},
		{BookingPending, BookingCompleted, true, false},
		{BookingConfirmed, BookingCompleted, true, true},
		{BookingPending, BookingConfirmed, false, false},
		{BookingPending, BookingCancelled, false, true},
		{BookingConfirmed, BookingCancelled, false, true},
		{BookingCompleted, BookingCancelled, false, false},
		{BookingRejected, BookingConfirmed, true, false},
	}
	for _, tc := range cases {
		b := &Booking{Status: tc.from}
		if got := b.CanTransition(tc.to, tc.asOwner); got != tc.want {
			t.Fatalf("%s -> %s (owner=%v) = %v, want %v", tc.from, tc.to, tc.asOwner, got, tc.want)
		}
	}
}

func TestParseChannel(t *testing.T) {
	cases := []struct {
		key  string
		kind ChannelKind
		id   string
	}{
		{NotificationChannel("u1"), ChannelNotification, "u1"},
		{ChatChannel("c-9"), ChannelChat, "c-9"},
		{"notification-", ChannelUnknown, ""},
		{"presence-u1", ChannelUnknown, ""},
		{"", ChannelUnknown, ""},
	}
	for _, tc := range cases {
		kind, id := ParseChannel(tc.key)
		if kind != tc.kind || id != tc.id {
			t.Fatalf("ParseChannel(%q) = (%v, %q), want (%v, %q)", tc.key, kind, id, tc.kind, tc.id)
		}
	}
}
