package handler

import "github.com/autodealer/showroom/internal/core/domain"

type startChatRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type conversationResponse struct {
	Conversation *domain.Conversation `json:"conversation"`
}

type conversationsResponse struct {
	Conversations []*domain.Conversation `json:"conversations"`
}

type chatMessageResponse struct {
	Message *domain.Message `json:"message"`
}

type messagesResponse struct {
	Messages []*domain.Message `json:"messages"`
}

type markedResponse struct {
	Updated int64 `json:"updated"`
}

type notificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}
