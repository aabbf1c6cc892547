package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte

	// Commit acknowledges a consumed message so it is not delivered again.
	// Nil on messages that have nothing to acknowledge.
	Commit func(ctx context.Context) error
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan Message, error)
}

// EscrowEventPublisher fans committed lifecycle events out to other services.
type EscrowEventPublisher interface {
	PublishEscrowEvents(ctx context.Context, escrow *Escrow, events []*EscrowEvent) error
}
