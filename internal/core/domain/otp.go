package domain

import (
	"encoding/json"
	"time"
)

// OTPPurpose scopes a one-time passcode.
type OTPPurpose = string

const (
	OTPSignup         OTPPurpose = "signup"
	OTPPasswordChange OTPPurpose = "password_change"
)

// OTP is the single live passcode for an (email, purpose) pair.
type OTP struct {
	ID         string
	Email      string
	Purpose    OTPPurpose
	CodeHash   string
	Payload    json.RawMessage
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// OTPState is the derived state of a passcode at a point in time.
type OTPState string

const (
	OTPIssued   OTPState = "issued"
	OTPExpired  OTPState = "expired"
	OTPConsumed OTPState = "consumed"
)

// State derives the passcode state at now. Consumption wins over expiry.
func (o *OTP) State(now time.Time) OTPState {
	if o.ConsumedAt != nil {
		return OTPConsumed
	}
	if !now.Before(o.ExpiresAt) {
		return OTPExpired
	}
	return OTPIssued
}

// SignupPayload is the pending account carried by a signup passcode.
type SignupPayload struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	PasswordHash string  `json:"password_hash"`
}

// PasswordChangePayload is the new credential carried by a password_change passcode.
type PasswordChangePayload struct {
	UserID       string `json:"user_id"`
	PasswordHash string `json:"password_hash"`
}
