// internal/notify/backend.go
package notify

import (
	"context"
	"fmt"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Relay is a cross-instance publisher with a receive loop feeding the local hub
type Relay interface {
	Publisher
	Run(ctx context.Context) error
}

// NewPublisher picks the publisher for the configured backend. The returned
// relay is nil for the local backend; otherwise the caller must Run it.
func NewPublisher(cfg config.NotifierConfig, hub *Hub, redisClient *redis.Client, logger *logrus.Logger) (Publisher, Relay, error) {
	switch cfg.Backend {
	case "", config.NotifierBackendLocal:
		return NewLocalPublisher(hub), nil, nil
	case config.NotifierBackendRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis notifier requires a redis client")
		}
		relay := NewRedisRelay(redisClient, cfg.RedisChannel, hub, logger)
		return relay, relay, nil
	case config.NotifierBackendKafka:
		relay := NewKafkaRelay(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupPrefix, hub, logger)
		return relay, relay, nil
	default:
		return nil, nil, fmt.Errorf("unknown notifier backend %q", cfg.Backend)
	}
}
