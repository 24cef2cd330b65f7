// internal/notify/redis_relay.go
package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRelay publishes events on a Redis channel and forwards everything
// received on that channel into the local hub, so every instance's
// observers see every instance's events.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *logrus.Logger
	ready   chan struct{}
}

// NewRedisRelay creates a Redis pub/sub relay
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger *logrus.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Publish implements Publisher
func (r *RedisRelay) Publish(ctx context.Context, e Event) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", e.Type, err)
	}
	return nil
}

// Ready is closed once the subscription is confirmed
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run subscribes and forwards until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	close(r.ready)

	r.logger.WithField("channel", r.channel).Info("redis notifier relay subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.hub.Broadcast([]byte(msg.Payload))
		}
	}
}
