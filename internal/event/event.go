package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is an immutable fact emitted by the booking platform.
// EventData carries the event-type-specific payload; the router is the
// only component that interprets it.
type DomainEvent struct {
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	AggregateID   string         `json:"aggregate_id"`
	AggregateType string         `json:"aggregate_type"`
	Timestamp     time.Time      `json:"timestamp"`
	UserID        string         `json:"user_id"`
	Version       int            `json:"version"`
	EventData     map[string]any `json:"event_data"`
}

func New(eventType, aggregateType, aggregateID, userID string, data map[string]any) DomainEvent {
	return DomainEvent{
		EventType:     eventType,
		EventID:       newEventID(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Timestamp:     time.Now().UTC(),
		UserID:        userID,
		Version:       1,
		EventData:     data,
	}
}

// newEventID combines a timestamp with a random suffix. Uniqueness is
// the only guarantee; nothing may depend on the IDs for ordering.
func newEventID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "evt-" + time.Now().UTC().Format("20060102T150405.000000000Z") + "-" + suffix
}

// StringField reads a top-level string out of EventData.
func (e DomainEvent) StringField(key string) string {
	v, _ := e.EventData[key].(string)
	return v
}

// NestedStringField reads a string out of a nested object in EventData,
// e.g. NestedStringField("nextInLine", "userId").
func (e DomainEvent) NestedStringField(key, nested string) string {
	obj, _ := e.EventData[key].(map[string]any)
	if obj == nil {
		return ""
	}
	v, _ := obj[nested].(string)
	return v
}

// TimeField parses an RFC3339 instant out of EventData. The zero time
// is returned when the field is absent or malformed.
func (e DomainEvent) TimeField(key string) time.Time {
	raw, _ := e.EventData[key].(string)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
