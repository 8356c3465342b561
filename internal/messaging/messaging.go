package messaging

import "context"

// Publisher publishes domain events to a message broker. Events with the
// same key keep their relative order.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic. Consume
// blocks until the context is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error)
}
