package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead sets is_read for a notification owned by userID. It succeeds
	// when the notification is already read.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// NotifyInput describes a notification to deliver.
type NotifyInput struct {
	UserID  string
	Title   string
	Message string
	Type    string
	Link    *string
}

// Notifier delivers a notification: persisted, fanned out, pushed.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) (*domain.Notification, error)
}

// NotificationService covers the user inbox.
type NotificationService interface {
	Notifier
	List(ctx context.Context, p domain.Principal, unreadOnly bool, page, limit int) ([]*domain.Notification, int64, error)
	UnreadCount(ctx context.Context, p domain.Principal) (int64, error)
	MarkRead(ctx context.Context, p domain.Principal, id string) error
	MarkAllRead(ctx context.Context, p domain.Principal) (int64, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
