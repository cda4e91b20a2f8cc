package ports

import (
	"context"

	"github.com/autodealer/showroom/internal/core/domain"
)

// Publisher delivers a payload to every current subscriber of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte) error
}

// Subscription is a live channel subscription.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// Subscriber opens channel subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// RealtimeService fans state changes out to subscribed clients.
type RealtimeService interface {
	// Publish schedules delivery of event on channel. It never blocks on the
	// pub/sub backend and never reports delivery failures to the caller.
	Publish(ctx context.Context, channel, event string, payload any)
	// AuthorizeChannel rejects principals that may not observe channel.
	AuthorizeChannel(ctx context.Context, p domain.Principal, channel string) error
	IssueChannelToken(ctx context.Context, p domain.Principal, channel string) (string, error)
	Subscribe(ctx context.Context, token, channel string) (Subscription, error)
}
