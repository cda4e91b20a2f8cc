package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

const maxMessageLength = 2000

// ChatService runs conversations between a user and a room's admin.
type ChatService struct {
	chats    ports.ChatRepository
	rooms    ports.RoomRepository
	realtime ports.RealtimeService
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewChatService(
	chats ports.ChatRepository,
	rooms ports.RoomRepository,
	realtime ports.RealtimeService,
	notifier ports.Notifier,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{chats: chats, rooms: rooms, realtime: realtime, notifier: notifier, log: log}
}

// Start returns the caller's conversation with the room, creating it on first contact.
func (s *ChatService) Start(ctx context.Context, p domain.Principal, roomID string) (*domain.Conversation, error) {
	if !domain.Authorize(p, domain.RoleUser) {
		return nil, domain.ErrForbidden
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, domain.ErrRoomNotFound
	}

	conv, err := s.chats.FindConversationByRoomAndUser(ctx, room.ID, p.ID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, fmt.Errorf("start chat: %w", err)
	}

	conv = &domain.Conversation{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		UserID:    p.ID,
		AdminID:   room.OwnerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.chats.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("start chat: %w", err)
	}
	return conv, nil
}

func (s *ChatService) List(ctx context.Context, p domain.Principal) ([]*domain.Conversation, error) {
	return s.chats.ListConversations(ctx, p.ID)
}

func (s *ChatService) Messages(ctx context.Context, p domain.Principal, conversationID string, before *time.Time, limit int) ([]*domain.Message, error) {
	conv, err := s.chats.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(p.ID) && !domain.Authorize(p, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	_, limit = normalizePage(1, limit)
	return s.chats.ListMessages(ctx, conv.ID, before, limit)
}

func (s *ChatService) Send(ctx context.Context, p domain.Principal, conversationID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalid("message content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, domain.Invalid("message is too long")
	}

	conv, err := s.chats.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(p.ID) {
		return nil, domain.ErrForbidden
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       p.ID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	s.realtime.Publish(ctx, domain.ChatChannel(conv.ID), domain.EventNewMessage, msg)
	notifyQuietly(ctx, s.notifier, s.log, ports.NotifyInput{
		UserID:  conv.Counterpart(p.ID),
		Title:   "New message",
		Message: preview(content),
		Type:    domain.NotifyChat,
		Link:    strPtr("/chats/" + conv.ID),
	})
	return msg, nil
}

type messagesRead struct {
	ConversationID string `json:"conversation_id"`
	ReaderID       string `json:"reader_id"`
	Count          int64  `json:"count"`
}

// MarkRead flags the other party's messages as read by p.
func (s *ChatService) MarkRead(ctx context.Context, p domain.Principal, conversationID string) (int64, error) {
	conv, err := s.chats.FindConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.IsParticipant(p.ID) {
		return 0, domain.ErrForbidden
	}
	n, err := s.chats.MarkRead(ctx, conv.ID, p.ID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		s.realtime.Publish(ctx, domain.ChatChannel(conv.ID), domain.EventMessagesRead,
			messagesRead{ConversationID: conv.ID, ReaderID: p.ID, Count: n})
	}
	return n, nil
}

func (s *ChatService) Conversation(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.chats.FindConversation(ctx, id)
}

func preview(s string) string {
	const limit = 80
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "..."
}
