package domain

import "time"

// Conversation is a chat thread between a user and the admin of a room.
type Conversation struct {
	ID            string     `json:"id"`
	RoomID        string     `json:"room_id"`
	UserID        string     `json:"user_id"`
	AdminID       string     `json:"admin_id"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsParticipant reports whether id is one of the two parties.
func (c *Conversation) IsParticipant(id string) bool {
	return c.UserID == id || c.AdminID == id
}

// Counterpart returns the id of the party other than id.
func (c *Conversation) Counterpart(id string) string {
	if c.UserID == id {
		return c.AdminID
	}
	return c.UserID
}

// Message is a single entry in a conversation's append-only history.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}
