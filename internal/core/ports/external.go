package ports

import "context"

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PushMessage is a device push notification addressed to one user.
type PushMessage struct {
	UserID string
	Title  string
	Body   string
	URL    *string
}

// PushSender delivers device push notifications.
type PushSender interface {
	Send(ctx context.Context, m PushMessage) error
}
