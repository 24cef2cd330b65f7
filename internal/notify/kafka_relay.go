// internal/notify/kafka_relay.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaRelay publishes events to a topic and forwards the topic into the
// local hub. Each instance reads with its own consumer group so every
// instance sees every event.
type KafkaRelay struct {
	writer       *kafka.Writer
	readerConfig kafka.ReaderConfig
	hub          *Hub
	logger       *logrus.Logger
}

// NewKafkaRelay creates a Kafka relay for the given brokers and topic
func NewKafkaRelay(brokers []string, topic, groupPrefix string, hub *Hub, logger *logrus.Logger) *KafkaRelay {
	return &KafkaRelay{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		readerConfig: kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     fmt.Sprintf("%s-%s", groupPrefix, uuid.NewString()),
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    1 << 20,
		},
		hub:    hub,
		logger: logger,
	}
}

// GroupID returns this instance's consumer group
func (k *KafkaRelay) GroupID() string {
	return k.readerConfig.GroupID
}

// Publish implements Publisher
func (k *KafkaRelay) Publish(ctx context.Context, e Event) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Type),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to kafka: %w", e.Type, err)
	}
	return nil
}

// Run consumes the topic until ctx is cancelled
func (k *KafkaRelay) Run(ctx context.Context) error {
	reader := kafka.NewReader(k.readerConfig)
	defer reader.Close()

	log := k.logger.WithFields(logrus.Fields{
		"topic":    k.readerConfig.Topic,
		"group_id": k.readerConfig.GroupID,
	})
	log.Info("kafka notifier relay consuming")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("kafka notifier relay shutting down")
				return nil
			}
			log.WithError(err).Error("error reading notifier message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		k.hub.Broadcast(msg.Value)
	}
}

// Close flushes and closes the writer
func (k *KafkaRelay) Close() error {
	return k.writer.Close()
}
