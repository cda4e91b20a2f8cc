package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown allows one action per key per window.
// Key format: cooldown:<key>
type Cooldown struct {
	client *redis.Client
	window time.Duration
}

func NewCooldown(client *redis.Client, window time.Duration) *Cooldown {
	return &Cooldown{client: client, window: window}
}

// Allow claims the key for the window. It reports false while an earlier
// claim is still live.
func (c *Cooldown) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := c.client.SetNX(ctx, "cooldown:"+key, "1", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown check: %w", err)
	}
	return ok, nil
}
