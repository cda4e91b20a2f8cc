package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptCounter counts events per key in a fixed window.
// Key format: attempts:<key>
type AttemptCounter struct {
	client *redis.Client
}

func NewAttemptCounter(client *redis.Client) *AttemptCounter {
	return &AttemptCounter{client: client}
}

// Incr bumps the counter and returns the new value. The window starts at the
// first increment and is not extended by later ones.
func (a *AttemptCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, "attempts:"+key)
		pipe.ExpireNX(ctx, "attempts:"+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("attempt counter incr: %w", err)
	}
	return incr.Val(), nil
}

func (a *AttemptCounter) Reset(ctx context.Context, key string) error {
	if err := a.client.Del(ctx, "attempts:"+key).Err(); err != nil {
		return fmt.Errorf("attempt counter reset: %w", err)
	}
	return nil
}
