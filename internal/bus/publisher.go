package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/example/booking-notifier/internal/event"
)

// KafkaPublisher writes domain events to a single topic, keyed by
// event ID so replays of the same event land on the same partition.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev event.DomainEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.EventID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
