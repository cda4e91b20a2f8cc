// Package nats provides the NATS-backed realtime pub/sub, selected with
// PUBSUB_DRIVER=nats.
package nats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/ports"
)

const subscriptionBuffer = 64

// Config holds NATS client configuration.
type Config struct {
	URL     string
	Cluster string
	AppID   string
}

// PubSub implements ports.Publisher and ports.Subscriber on core NATS
// subjects. Messages go only to subscribers connected at publish time.
type PubSub struct {
	nc     *nats.Conn
	prefix string
	log    zerolog.Logger
}

// Connect dials the server and returns a PubSub scoped to cfg's cluster and app id.
func Connect(cfg Config, log zerolog.Logger) (*PubSub, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("showroom"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &PubSub{nc: nc, prefix: SubjectPrefix(cfg.Cluster, cfg.AppID), log: log}, nil
}

// SubjectPrefix namespaces channels per deployment.
func SubjectPrefix(cluster, appID string) string {
	return "showroom." + token(cluster) + "." + token(appID) + "."
}

// token strips characters NATS reserves inside a subject token.
func token(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

func (p *PubSub) subject(channel string) string {
	return p.prefix + token(channel)
}

func (p *PubSub) Publish(_ context.Context, channel string, data []byte) error {
	if err := p.nc.Publish(p.subject(channel), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe flushes after registering so the server knows about the
// interest before it returns.
func (p *PubSub) Subscribe(ctx context.Context, channel string) (ports.Subscription, error) {
	in := make(chan *nats.Msg, subscriptionBuffer)
	sub, err := p.nc.ChanSubscribe(p.subject(channel), in)
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", channel, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("nats flush: %w", err)
	}

	s := &subscription{sub: sub, in: in, out: make(chan []byte, subscriptionBuffer), done: make(chan struct{})}
	go s.pump(p.log.With().Str("channel", channel).Logger())
	return s, nil
}

// Ping reports whether the connection is up.
func (p *PubSub) Ping(context.Context) error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats: %s", p.nc.Status())
	}
	return nil
}

func (p *PubSub) Close() {
	p.nc.Close()
}

type subscription struct {
	sub  *nats.Subscription
	in   chan *nats.Msg
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (s *subscription) pump(log zerolog.Logger) {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.in:
			select {
			case s.out <- msg.Data:
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
		err = s.sub.Unsubscribe()
		close(s.done)
	})
	return err
}
