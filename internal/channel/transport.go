package channel

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
	"github.com/example/booking-notifier/internal/template"
)

// Transport delivers one rendered message over one channel. Providers
// behind it must be safe to retry externally; the dispatcher itself
// never retries.
type Transport interface {
	Send(ctx context.Context, ch event.Channel, rcpt *directory.Recipient, msg template.RenderedMessage) (messageID string, err error)
}

// SimulatedTransport stands in for the real provider integrations. It
// fabricates message IDs and can be scripted to fail per channel or
// per recipient, which is what the dispatcher tests lean on.
type SimulatedTransport struct {
	mu          sync.Mutex
	sent        []SimulatedDelivery
	FailFor     map[event.Channel]error
	FailUserFor map[string]error
}

type SimulatedDelivery struct {
	Channel   event.Channel
	UserID    string
	MessageID string
	Message   template.RenderedMessage
}

func NewSimulatedTransport() *SimulatedTransport {
	return &SimulatedTransport{}
}

func (t *SimulatedTransport) Send(_ context.Context, ch event.Channel, rcpt *directory.Recipient, msg template.RenderedMessage) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err, ok := t.FailFor[ch]; ok {
		return "", err
	}
	if err, ok := t.FailUserFor[rcpt.UserID]; ok {
		return "", err
	}
	id := fmt.Sprintf("sim-%s-%s", ch, uuid.NewString())
	t.sent = append(t.sent, SimulatedDelivery{Channel: ch, UserID: rcpt.UserID, MessageID: id, Message: msg})
	return id, nil
}

// Deliveries snapshots everything sent so far.
func (t *SimulatedTransport) Deliveries() []SimulatedDelivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SimulatedDelivery, len(t.sent))
	copy(out, t.sent)
	return out
}
