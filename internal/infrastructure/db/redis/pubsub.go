package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/ports"
)

const subscriptionBuffer = 64

// Namespace builds the channel prefix shared by every deployment using the
// same cluster and app id.
func Namespace(cluster, appID string) string {
	return fmt.Sprintf("showroom:%s:%s:", cluster, appID)
}

// PubSub implements ports.Publisher and ports.Subscriber over Redis PUBLISH/SUBSCRIBE.
type PubSub struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

func NewPubSub(client *redis.Client, prefix string, log zerolog.Logger) *PubSub {
	return &PubSub{client: client, prefix: prefix, log: log}
}

func (p *PubSub) Publish(ctx context.Context, channel string, data []byte) error {
	if err := p.client.Publish(ctx, p.prefix+channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe returns once the server has confirmed the subscription, so no
// message published afterwards is missed.
func (p *PubSub) Subscribe(ctx context.Context, channel string) (ports.Subscription, error) {
	ps := p.client.Subscribe(ctx, p.prefix+channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	s := &subscription{ps: ps, out: make(chan []byte, subscriptionBuffer), done: make(chan struct{})}
	go s.pump(p.log.With().Str("channel", channel).Logger())
	return s, nil
}

type subscription struct {
	ps   *redis.PubSub
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (s *subscription) pump(log zerolog.Logger) {
	defer close(s.out)
	in := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case s.out <- []byte(msg.Payload):
			default:
				log.Warn().Msg("subscriber too slow, dropping realtime message")
			}
		}
	}
}

func (s *subscription) Messages() <-chan []byte { return s.out }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
