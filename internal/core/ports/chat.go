package ports

import (
	"context"
	"time"

	"github.com/autodealer/showroom/internal/core/domain"
)

// ChatRepository persists conversations and their message history.
type ChatRepository interface {
	CreateConversation(ctx context.Context, c *domain.Conversation) error
	FindConversation(ctx context.Context, id string) (*domain.Conversation, error)
	FindConversationByRoomAndUser(ctx context.Context, roomID, userID string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, participantID string) ([]*domain.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]*domain.Message, error)
	// AddMessage appends the message and updates the conversation summary together.
	AddMessage(ctx context.Context, m *domain.Message) error
	// MarkRead flags every message not sent by readerID as read and returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
}

// ChatService covers user-to-admin messaging.
type ChatService interface {
	Start(ctx context.Context, p domain.Principal, roomID string) (*domain.Conversation, error)
	List(ctx context.Context, p domain.Principal) ([]*domain.Conversation, error)
	Messages(ctx context.Context, p domain.Principal, conversationID string, before *time.Time, limit int) ([]*domain.Message, error)
	Send(ctx context.Context, p domain.Principal, conversationID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, p domain.Principal, conversationID string) (int64, error)
	// Conversation loads a conversation for channel authorization.
	Conversation(ctx context.Context, id string) (*domain.Conversation, error)
}
