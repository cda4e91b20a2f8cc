package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type notificationService struct {
	repo     ports.NotificationRepository
	realtime ports.RealtimeService
	push     ports.PushSender
	queue    ports.TaskQueue
	log      zerolog.Logger
}

// NewNotificationService returns a NotificationService. push may be nil.
func NewNotificationService(
	repo ports.NotificationRepository,
	realtime ports.RealtimeService,
	push ports.PushSender,
	queue ports.TaskQueue,
	log zerolog.Logger,
) ports.NotificationService {
	return &notificationService{repo: repo, realtime: realtime, push: push, queue: queue, log: log}
}

// Notify persists the notification, then fans it out on the user's channel
// and as a device push. Only the persistence step can fail the call.
func (s *notificationService) Notify(ctx context.Context, in ports.NotifyInput) (*domain.Notification, error) {
	typ := in.Type
	if typ == "" {
		typ = domain.NotifySystem
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     in.Title,
		Message:   in.Message,
		Type:      typ,
		Link:      in.Link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	s.realtime.Publish(ctx, domain.NotificationChannel(n.UserID), domain.EventNewNotification, n)

	if s.push != nil {
		msg := ports.PushMessage{UserID: n.UserID, Title: n.Title, Body: n.Message, URL: n.Link}
		ok := s.queue.Enqueue(ports.Task{
			Name: "push.send",
			Key:  n.UserID,
			Run: func(ctx context.Context) error {
				return s.push.Send(ctx, msg)
			},
		})
		if !ok {
			s.log.Warn().Str("user_id", n.UserID).Msg("push task dropped")
		}
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context, p domain.Principal, unreadOnly bool, page, limit int) ([]*domain.Notification, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.ListByUser(ctx, p.ID, unreadOnly, page, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, p domain.Principal) (int64, error) {
	return s.repo.CountUnread(ctx, p.ID)
}

// MarkRead is idempotent: marking an already-read notification succeeds.
func (s *notificationService) MarkRead(ctx context.Context, p domain.Principal, id string) error {
	return s.repo.MarkRead(ctx, id, p.ID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, p domain.Principal) (int64, error) {
	return s.repo.MarkAllRead(ctx, p.ID)
}

func (s *notificationService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.repo.Delete(ctx, id, p.ID)
}
