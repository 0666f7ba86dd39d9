package dispatch

import (
	"time"

	"github.com/example/booking-notifier/internal/channel"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
)

// Payload is the fully hydrated dispatch request. Built once by the
// router, consumed once by the dispatcher; the dispatcher never looks
// back at the raw domain event.
type Payload struct {
	EventType         string                `json:"event_type"`
	EventID           string                `json:"event_id"`
	AggregateID       string                `json:"aggregate_id"`
	Priority          event.Priority        `json:"priority"`
	ProgramID         string                `json:"program_id,omitempty"`
	Recipients        []directory.Recipient `json:"recipients"`
	TemplateVariables map[string]any        `json:"template_variables"`
	Channels          []channel.Config      `json:"channels"`
	ScheduledAt       time.Time             `json:"scheduled_at,omitempty"`
	ExpiresAt         time.Time             `json:"expires_at,omitempty"`
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

type ChannelStatus string

const (
	ChannelSuccess ChannelStatus = "SUCCESS"
	ChannelFailed  ChannelStatus = "FAILED"
)

// ChannelResult records one attempted recipient×channel send. Gated,
// template-less and expired pairs produce no ChannelResult at all.
type ChannelResult struct {
	Channel     event.Channel `json:"channel"`
	RecipientID string        `json:"recipient_id"`
	Status      ChannelStatus `json:"status"`
	MessageID   string        `json:"message_id,omitempty"`
	Error       string        `json:"error,omitempty"`
	SentAt      time.Time     `json:"sent_at,omitempty"`
}

// Result aggregates one dispatch pass. It is mutated only by the
// dispatcher while the pass runs and is frozen once ProcessedAt is set.
type Result struct {
	NotificationID string          `json:"notification_id"`
	EventID        string          `json:"event_id"`
	Status         Status          `json:"status"`
	ChannelResults []ChannelResult `json:"channel_results"`
	TotalSent      int             `json:"total_sent"`
	TotalFailed    int             `json:"total_failed"`
	CreatedAt      time.Time       `json:"created_at"`
	ProcessedAt    time.Time       `json:"processed_at"`
}
