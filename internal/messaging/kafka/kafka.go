package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/mreynaud/go-storefront/internal/messaging"
)

const partitionKeyMetadata = "partition_key"

type kafkaBroker struct {
	brokers   []string
	marshaler wkafka.MarshalerUnmarshaler
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

// NewBroker creates a Kafka publisher and subscriber on Watermill. Events of
// one key land on one partition, so consumers see them in order.
func NewBroker(brokers []string, slogger *slog.Logger) (messaging.Publisher, messaging.Subscriber, error) {
	logger := watermill.NewSlogLogger(slogger)

	marshaler := wkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(partitionKeyMetadata), nil
	})

	saramaConfig := wkafka.DefaultSaramaSyncPublisherConfig()
	saramaConfig.Version = sarama.V2_1_0_0

	publisher, err := wkafka.NewPublisher(wkafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: saramaConfig,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	kb := &kafkaBroker{
		brokers:   brokers,
		marshaler: marshaler,
		publisher: publisher,
		logger:    logger,
	}
	return kb, kb, nil
}

func (k *kafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(partitionKeyMetadata, key)
	msg.SetContext(ctx)

	if err := k.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (k *kafkaBroker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	saramaConfig := wkafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Version = sarama.V2_1_0_0

	subscriber, err := wkafka.NewSubscriber(wkafka.SubscriberConfig{
		Brokers:               k.brokers,
		Unmarshaler:           k.marshaler,
		ConsumerGroup:         groupID,
		OverwriteSaramaConfig: saramaConfig,
	}, k.logger)
	if err != nil {
		slog.Error("Failed to create kafka subscriber", "topic", topic, "err", err)
		return
	}
	defer subscriber.Close()

	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Failed to subscribe", "topic", topic, "err", err)
		return
	}

	for msg := range messages {
		if err := handler(ctx, msg.Payload); err != nil {
			slog.Error("Error handling message", "topic", topic, "err", err)
		}
		msg.Ack()
	}
	slog.Info("Consumer shutting down", "topic", topic)
}
