package domain

import (
	"encoding/json"
	"strings"
)

const (
	notificationChannelPrefix = "notification-"
	chatChannelPrefix         = "chat-"
)

// Realtime event names.
const (
	EventNewNotification = "new-notification"
	EventNewMessage      = "new-message"
	EventMessagesRead    = "messages-read"
)

// NotificationChannel returns the per-user notification channel key.
func NotificationChannel(userID string) string { return notificationChannelPrefix + userID }

// ChatChannel returns the per-conversation channel key.
func ChatChannel(conversationID string) string { return chatChannelPrefix + conversationID }

// ChannelKind identifies the entity a channel key is derived from.
type ChannelKind int

const (
	ChannelUnknown ChannelKind = iota
	ChannelNotification
	ChannelChat
)

// ParseChannel splits a channel key into its kind and embedded entity id.
func ParseChannel(key string) (ChannelKind, string) {
	switch {
	case strings.HasPrefix(key, notificationChannelPrefix) && len(key) > len(notificationChannelPrefix):
		return ChannelNotification, strings.TrimPrefix(key, notificationChannelPrefix)
	case strings.HasPrefix(key, chatChannelPrefix) && len(key) > len(chatChannelPrefix):
		return ChannelChat, strings.TrimPrefix(key, chatChannelPrefix)
	}
	return ChannelUnknown, ""
}

// RealtimeEvent is the envelope delivered to channel subscribers.
type RealtimeEvent struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}
