package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisPublisher is the part of *redis.Client the notifier needs
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes events as JSON on a Redis Pub/Sub channel
type RedisNotifier struct {
	client  redisPublisher
	channel string
}

// NewRedisNotifier creates a notifier publishing on channel
func NewRedisNotifier(client redisPublisher, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

// Notify publishes event; subscribers that are not listening miss it
func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", n.channel, err)
	}
	return nil
}
