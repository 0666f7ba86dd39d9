package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/example/booking-notifier/internal/dispatch"
	"github.com/example/booking-notifier/internal/event"
)

// EventRouter is what the consumer feeds decoded events into.
type EventRouter interface {
	Route(ctx context.Context, ev event.DomainEvent) (*dispatch.Result, error)
}

// Consumer pulls domain events off the bus and routes them. Malformed
// messages are logged and committed; a routing error leaves the
// message uncommitted so the bus redelivers it.
type Consumer struct {
	ReaderFactory func() *kafka.Reader
	Router        EventRouter
	Logger        zerolog.Logger
}

func (c *Consumer) Run(ctx context.Context) error {
	if c.ReaderFactory == nil || c.Router == nil {
		return errors.New("consumer requires a reader factory and a router")
	}
	reader := c.ReaderFactory()
	defer reader.Close()

	tracer := otel.Tracer("consumer")

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("fetch message: %w", err)
		}

		var ev event.DomainEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Logger.Error().Err(err).Msg("failed to decode domain event")
			_ = reader.CommitMessages(ctx, m)
			continue
		}

		spanCtx, span := tracer.Start(ctx, "consume")
		span.SetAttributes(
			attribute.String("event.id", ev.EventID),
			attribute.String("event.type", ev.EventType),
		)

		result, err := c.Router.Route(spanCtx, ev)
		if err != nil {
			span.RecordError(err)
			span.End()
			c.Logger.Error().Err(err).Str("event_id", ev.EventID).Msg("routing failed, leaving message for redelivery")
			continue
		}
		if result != nil {
			c.Logger.Info().
				Str("event_id", ev.EventID).
				Str("notification_id", result.NotificationID).
				Str("status", string(result.Status)).
				Int("sent", result.TotalSent).
				Int("failed", result.TotalFailed).
				Msg("event dispatched")
		}

		span.End()
		if err := reader.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}
