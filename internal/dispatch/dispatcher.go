package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/booking-notifier/internal/channel"
	"github.com/example/booking-notifier/internal/common"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
	"github.com/example/booking-notifier/internal/template"
)

// TypeNotificationProcessed is the completion event emitted after each
// dispatch pass. It is never itself notifiable.
const TypeNotificationProcessed = "NotificationProcessed"

var (
	attemptCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_attempts_total",
		Help: "Recipient-channel pairs considered, by outcome",
	}, []string{"channel", "outcome"})
	transportLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_transport_duration_seconds",
		Help:    "Latency of transport sends",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
)

// CompletionPublisher emits the NotificationProcessed completion
// event. Publishing is best-effort; failures are logged, not returned.
type CompletionPublisher interface {
	Publish(ctx context.Context, ev event.DomainEvent) error
}

// Dispatcher fans one payload out across recipients and channels,
// aggregating the independent outcomes into a single Result.
type Dispatcher struct {
	registry  *template.Registry
	transport channel.Transport
	publisher CompletionPublisher
	logger    zerolog.Logger
	workers   int
	tracer    trace.Tracer
	now       func() time.Time
}

func NewDispatcher(registry *template.Registry, transport channel.Transport, publisher CompletionPublisher, logger zerolog.Logger, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 8
	}
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		publisher: publisher,
		logger:    logger,
		workers:   workers,
		tracer:    otel.Tracer("dispatcher"),
		now:       time.Now,
	}
}

// Send runs one dispatch pass. Recipients fan out across a bounded
// worker pool and channels fan out concurrently per recipient; the
// pairs are independent, so the only shared state is the accumulator.
func (d *Dispatcher) Send(ctx context.Context, payload *Payload) *Result {
	ctx, span := d.tracer.Start(ctx, "dispatch.send")
	span.SetAttributes(
		attribute.String("event.id", payload.EventID),
		attribute.String("event.type", payload.EventType),
		attribute.Int("recipients", len(payload.Recipients)),
	)
	defer span.End()

	result := &Result{
		NotificationID: uuid.NewString(),
		EventID:        payload.EventID,
		Status:         StatusPending,
		CreatedAt:      d.now().UTC(),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(cr ChannelResult) {
		mu.Lock()
		defer mu.Unlock()
		result.ChannelResults = append(result.ChannelResults, cr)
		if cr.Status == ChannelSuccess {
			result.TotalSent++
		} else {
			result.TotalFailed++
		}
	}

	jobs := make(chan *directory.Recipient)
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rcpt := range jobs {
				d.sendToRecipient(ctx, payload, rcpt, record)
			}
		}()
	}
	for i := range payload.Recipients {
		jobs <- &payload.Recipients[i]
	}
	close(jobs)
	wg.Wait()

	result.Status = overallStatus(result.TotalSent, result.TotalFailed)
	result.ProcessedAt = d.now().UTC()
	span.SetAttributes(
		attribute.String("result.status", string(result.Status)),
		attribute.Int("result.sent", result.TotalSent),
		attribute.Int("result.failed", result.TotalFailed),
	)

	d.publishCompletion(ctx, payload, result)
	return result
}

func (d *Dispatcher) sendToRecipient(ctx context.Context, payload *Payload, rcpt *directory.Recipient, record func(ChannelResult)) {
	var wg sync.WaitGroup
	for _, ch := range payload.Channels {
		ch := ch
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.attempt(ctx, payload, rcpt, ch, record)
		}()
	}
	wg.Wait()
}

// attempt handles one recipient×channel pair. Expiry is checked here,
// per attempt, because the pool may dequeue work after the deadline.
func (d *Dispatcher) attempt(ctx context.Context, payload *Payload, rcpt *directory.Recipient, ch channel.Config, record func(ChannelResult)) {
	logger := common.WithContext(ctx, d.logger).With().
		Str("event_id", payload.EventID).
		Str("user_id", rcpt.UserID).
		Str("channel", string(ch.Type)).
		Logger()

	if !payload.ExpiresAt.IsZero() && d.now().After(payload.ExpiresAt) {
		logger.Warn().Time("expires_at", payload.ExpiresAt).Msg("notification expired before send, skipping")
		attemptCounter.WithLabelValues(string(ch.Type), "expired").Inc()
		return
	}
	if !channel.Eligible(rcpt, ch.Type) {
		attemptCounter.WithLabelValues(string(ch.Type), "gated").Inc()
		return
	}

	tpl := d.registry.Get(payload.EventType, ch.Type, rcpt.PreferredLanguage, payload.ProgramID)
	if tpl == nil {
		// A missing template is a configuration gap, not a failure.
		logger.Warn().Str("language", rcpt.PreferredLanguage).Msg("no template registered, skipping")
		attemptCounter.WithLabelValues(string(ch.Type), "no_template").Inc()
		return
	}

	rendered := template.Render(tpl, payload.TemplateVariables)

	sendCtx, span := d.tracer.Start(ctx, "dispatch.transport")
	span.SetAttributes(
		attribute.String("channel", string(ch.Type)),
		attribute.String("recipient.id", rcpt.UserID),
	)
	start := d.now()
	messageID, err := d.transport.Send(sendCtx, ch.Type, rcpt, rendered)
	transportLatency.WithLabelValues(string(ch.Type)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.End()
		logger.Error().Err(err).Msg("transport send failed")
		attemptCounter.WithLabelValues(string(ch.Type), "failed").Inc()
		record(ChannelResult{
			Channel:     ch.Type,
			RecipientID: rcpt.UserID,
			Status:      ChannelFailed,
			Error:       err.Error(),
		})
		return
	}
	span.End()

	attemptCounter.WithLabelValues(string(ch.Type), "success").Inc()
	record(ChannelResult{
		Channel:     ch.Type,
		RecipientID: rcpt.UserID,
		Status:      ChannelSuccess,
		MessageID:   messageID,
		SentAt:      d.now().UTC(),
	})
}

func overallStatus(sent, failed int) Status {
	switch {
	case failed == 0:
		return StatusSent
	case sent == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// publishCompletion emits NotificationProcessed. Best-effort: a
// publish failure is logged and never propagated to the caller.
func (d *Dispatcher) publishCompletion(ctx context.Context, payload *Payload, result *Result) {
	if d.publisher == nil {
		return
	}
	ev := event.New(TypeNotificationProcessed, "notification", result.NotificationID, "", map[string]any{
		"eventId":        result.EventID,
		"eventType":      payload.EventType,
		"notificationId": result.NotificationID,
		"status":         string(result.Status),
		"totalSent":      result.TotalSent,
		"totalFailed":    result.TotalFailed,
		"channelResults": result.ChannelResults,
	})
	if err := d.publisher.Publish(ctx, ev); err != nil {
		logger := common.WithContext(ctx, d.logger)
		logger.Error().Err(err).
			Str("notification_id", result.NotificationID).
			Msg("failed to publish completion event")
	}
}
