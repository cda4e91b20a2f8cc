package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

// RealtimeService publishes events to per-user and per-conversation channels
// and guards who may subscribe to them.
type RealtimeService struct {
	pub    ports.Publisher
	sub    ports.Subscriber
	tokens ports.ChannelTokens
	chats  ports.ChatRepository
	queue  ports.TaskQueue
	log    zerolog.Logger
}

func NewRealtimeService(
	pub ports.Publisher,
	sub ports.Subscriber,
	tokens ports.ChannelTokens,
	chats ports.ChatRepository,
	queue ports.TaskQueue,
	log zerolog.Logger,
) *RealtimeService {
	return &RealtimeService{pub: pub, sub: sub, tokens: tokens, chats: chats, queue: queue, log: log}
}

// Publish marshals the event and hands it to the task queue keyed by channel,
// so events on one channel leave this process in order.
func (s *RealtimeService) Publish(_ context.Context, channel, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("channel", channel).Str("event", event).Msg("marshal realtime payload")
		return
	}
	msg, err := json.Marshal(domain.RealtimeEvent{Channel: channel, Event: event, Data: data})
	if err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("marshal realtime envelope")
		return
	}

	ok := s.queue.Enqueue(ports.Task{
		Name: "realtime.publish",
		Key:  channel,
		Run: func(ctx context.Context) error {
			return s.pub.Publish(ctx, channel, msg)
		},
	})
	if !ok {
		s.log.Warn().Str("channel", channel).Str("event", event).Msg("realtime publish dropped")
	}
}

// AuthorizeChannel allows a user onto their own notification channel and a
// conversation participant (or a superadmin) onto a chat channel.
func (s *RealtimeService) AuthorizeChannel(ctx context.Context, p domain.Principal, channel string) error {
	kind, id := domain.ParseChannel(channel)
	switch kind {
	case domain.ChannelNotification:
		if id != p.ID {
			return domain.ErrForbidden
		}
		return nil
	case domain.ChannelChat:
		conv, err := s.chats.FindConversation(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrConversationNotFound) {
				return domain.ErrForbidden
			}
			return fmt.Errorf("authorize channel: %w", err)
		}
		if conv.IsParticipant(p.ID) || domain.Authorize(p, domain.RoleSuperadmin) {
			return nil
		}
		return domain.ErrForbidden
	default:
		return domain.ErrForbidden
	}
}

// IssueChannelToken authorizes p for channel and returns a token the client
// presents when opening the stream.
func (s *RealtimeService) IssueChannelToken(ctx context.Context, p domain.Principal, channel string) (string, error) {
	if err := s.AuthorizeChannel(ctx, p, channel); err != nil {
		return "", err
	}
	token, err := s.tokens.IssueChannel(p, channel)
	if err != nil {
		return "", fmt.Errorf("issue channel token: %w", err)
	}
	return token, nil
}

// Subscribe opens a subscription for the holder of a channel token.
func (s *RealtimeService) Subscribe(ctx context.Context, token, channel string) (ports.Subscription, error) {
	p, ok := s.tokens.VerifyChannel(token, channel)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	sub, err := s.sub.Subscribe(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	s.log.Debug().Str("channel", channel).Str("user_id", p.ID).Msg("realtime subscriber attached")
	return sub, nil
}
