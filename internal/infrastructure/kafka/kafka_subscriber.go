package publisher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaSubscriber struct {
	brokers []string
}

func NewDefaultKafkaSubscriber(brokers []string) *DefaultKafkaSubscriber {
	return &DefaultKafkaSubscriber{brokers: brokers}
}

// Subscribe streams topic messages until ctx is cancelled or the reader
// fails; the channel is closed either way. Offsets are not committed on
// read: a message is acknowledged only through its Commit.
func (k *DefaultKafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer reader.Close()
		for {
			m, err := reader.FetchMessage(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("kafka reader stopped", "topic", topic, "error", err)
				}
				return
			}
			select {
			case out <- domain.Message{Key: m.Key, Value: m.Value, Commit: commitFunc(reader, m)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func commitFunc(reader *kafka.Reader, m kafka.Message) func(context.Context) error {
	return func(ctx context.Context) error {
		return reader.CommitMessages(ctx, m)
	}
}
