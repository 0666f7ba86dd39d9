package route

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/booking-notifier/internal/channel"
	"github.com/example/booking-notifier/internal/common"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/dispatch"
	"github.com/example/booking-notifier/internal/event"
)

var routingDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "routing_decisions_total",
	Help: "Domain events routed, by decision",
}, []string{"event_type", "decision"})

// Router is the top-level entry: it decides whether a domain event
// warrants notification, hydrates recipients and resources, and hands
// a fully built payload to the dispatcher.
type Router struct {
	resolver   *directory.Resolver
	resources  directory.ResourceDirectory
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
	tracer     trace.Tracer
}

func NewRouter(resolver *directory.Resolver, resources directory.ResourceDirectory, dispatcher *dispatch.Dispatcher, logger zerolog.Logger) *Router {
	return &Router{
		resolver:   resolver,
		resources:  resources,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("router"),
	}
}

// Route classifies and dispatches one domain event. A skipped event
// (excluded type, unknown type, or no resolvable recipients) returns
// (nil, nil); skipping is a decision, not an error.
func (r *Router) Route(ctx context.Context, ev event.DomainEvent) (*dispatch.Result, error) {
	ctx, span := r.tracer.Start(ctx, "route")
	span.SetAttributes(
		attribute.String("event.id", ev.EventID),
		attribute.String("event.type", ev.EventType),
	)
	defer span.End()

	logger := common.WithContext(ctx, r.logger).With().
		Str("event_id", ev.EventID).
		Str("event_type", ev.EventType).
		Logger()

	if !event.ShouldNotify(ev.EventType) {
		logger.Debug().Msg("event type not notifiable, skipping")
		routingDecisions.WithLabelValues(ev.EventType, "skipped").Inc()
		return nil, nil
	}
	classification := event.Classify(ev.EventType)

	found, notFound := r.resolver.ResolveBatch(ctx, recipientIDs(ev))
	if len(notFound) > 0 {
		logger.Warn().Strs("user_ids", notFound).Msg("some recipients could not be resolved")
	}
	if len(found) == 0 {
		logger.Warn().Msg("no resolvable recipients, skipping")
		routingDecisions.WithLabelValues(ev.EventType, "no_recipients").Inc()
		return nil, nil
	}

	variables := r.buildVariables(ctx, ev, found)

	channels := make([]channel.Config, 0, len(classification.Channels))
	for _, ch := range classification.Channels {
		channels = append(channels, channel.Config{Type: ch, Priority: classification.Priority})
	}

	payload := &dispatch.Payload{
		EventType:         ev.EventType,
		EventID:           ev.EventID,
		AggregateID:       ev.AggregateID,
		Priority:          classification.Priority,
		ProgramID:         ev.StringField("programId"),
		Recipients:        found,
		TemplateVariables: variables,
		Channels:          channels,
		ExpiresAt:         responseDeadline(ev),
	}

	routingDecisions.WithLabelValues(ev.EventType, "dispatched").Inc()
	return r.dispatcher.Send(ctx, payload), nil
}

// recipientIDs maps an event type to the payload fields that identify
// who should be told about it.
func recipientIDs(ev event.DomainEvent) []string {
	switch ev.EventType {
	case event.TypeWaitingListSlotAvailable:
		if id := ev.NestedStringField("nextInLine", "userId"); id != "" {
			return []string{id}
		}
		return nil
	case event.TypeReassignmentRequested,
		event.TypeReassignmentApproved,
		event.TypeReassignmentRejected,
		event.TypeReassignmentCompleted,
		event.TypeReassignmentEquivalentFound:
		if id := ev.StringField("requestedBy"); id != "" {
			return []string{id}
		}
		return []string{ev.UserID}
	case event.TypeMaintenanceScheduled,
		event.TypeMaintenanceStarted,
		event.TypeMaintenanceCompleted,
		event.TypeMaintenanceCancelled,
		event.TypeResourceUnavailable,
		event.TypeResourceDeleted,
		event.TypeResourceCapacityChanged:
		if ids := stringSlice(ev.EventData["affectedUserIds"]); len(ids) > 0 {
			return ids
		}
		return []string{ev.UserID}
	default:
		return []string{ev.UserID}
	}
}

// buildVariables flattens the event payload's scalar fields and adds
// resolved resource and recipient display fields.
func (r *Router) buildVariables(ctx context.Context, ev event.DomainEvent, recipients []directory.Recipient) map[string]any {
	vars := make(map[string]any)
	for k, v := range ev.EventData {
		switch v.(type) {
		case string, bool, int, int64, float64:
			vars[k] = v
		}
	}
	vars["eventType"] = ev.EventType

	if len(recipients) == 1 {
		vars["userId"] = recipients[0].UserID
		if recipients[0].Email != "" {
			vars["userEmail"] = recipients[0].Email
		}
	}

	resourceID := ev.StringField("resourceId")
	if resourceID == "" && ev.AggregateType == "resource" {
		resourceID = ev.AggregateID
	}
	if resourceID != "" && r.resources != nil {
		if info, err := r.resources.GetResource(ctx, resourceID); err != nil {
			r.logger.Warn().Err(err).Str("resource_id", resourceID).Msg("resource lookup failed")
		} else if info != nil {
			vars["resourceName"] = info.Name
			vars["resourceType"] = info.Type
			if info.Location != "" {
				vars["resourceLocation"] = info.Location
			}
			if info.Capacity > 0 {
				vars["resourceCapacity"] = info.Capacity
			}
		}
	}

	// The reassignment path offers alternatives alongside the request.
	if ev.EventType == event.TypeReassignmentRequested && resourceID != "" && r.resources != nil {
		criteria := stringMap(ev.EventData["criteria"])
		if equivalents, err := r.resources.FindEquivalents(ctx, resourceID, criteria); err != nil {
			r.logger.Warn().Err(err).Str("resource_id", resourceID).Msg("equivalents lookup failed")
		} else if len(equivalents) > 0 {
			names := make([]string, 0, len(equivalents))
			for _, eq := range equivalents {
				names = append(names, eq.Name)
			}
			vars["equivalentResources"] = strings.Join(names, ", ")
			vars["equivalentCount"] = len(equivalents)
		}
	}

	return vars
}

// responseDeadline extracts the expiry instant for time-bounded
// notifications, e.g. the slot-confirmation window.
func responseDeadline(ev event.DomainEvent) time.Time {
	if t := ev.TimeField("confirmationDeadline"); !t.IsZero() {
		return t
	}
	return ev.TimeField("responseDeadline")
}

func stringSlice(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringMap(v any) map[string]string {
	raw, _ := v.(map[string]any)
	out := make(map[string]string, len(raw))
	for k, item := range raw {
		if s, ok := item.(string); ok {
			out[k] = s
		}
	}
	return out
}
