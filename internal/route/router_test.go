package route

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/booking-notifier/internal/channel"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/dispatch"
	"github.com/example/booking-notifier/internal/event"
	"github.com/example/booking-notifier/internal/template"
)

type fakeUsers struct {
	users map[string]directory.Recipient
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*directory.Recipient, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetUsersBatch(_ context.Context, ids []string) (directory.BatchResult, error) {
	var res directory.BatchResult
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			res.Found = append(res.Found, u)
		} else {
			res.NotFound = append(res.NotFound, id)
		}
	}
	return res, nil
}

type fakeResources struct {
	resources   map[string]directory.ResourceInfo
	equivalents []directory.ResourceInfo
}

func (f *fakeResources) GetResource(_ context.Context, id string) (*directory.ResourceInfo, error) {
	if r, ok := f.resources[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeResources) GetResourcesBatch(_ context.Context, ids []string) ([]directory.ResourceInfo, []string, error) {
	var found []directory.ResourceInfo
	var missing []string
	for _, id := range ids {
		if r, ok := f.resources[id]; ok {
			found = append(found, r)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (f *fakeResources) FindEquivalents(_ context.Context, _ string, _ map[string]string) ([]directory.ResourceInfo, error) {
	return f.equivalents, nil
}

func newTestRouter(t *testing.T, users map[string]directory.Recipient, resources *fakeResources) (*Router, *channel.SimulatedTransport) {
	t.Helper()
	reg := template.NewRegistry()
	templates := []*template.Template{
		{
			ID:        "slot-email-en",
			EventType: event.TypeWaitingListSlotAvailable,
			Channel:   event.ChannelEmail,
			Language:  "en",
			Subject:   "Slot for {{resourceName}}",
			Body:      "Confirm before {{confirmationDeadline}}",
			Variables: []string{"resourceName", "confirmationDeadline"},
		},
		{
			ID:        "reassign-email-en",
			EventType: event.TypeReassignmentRequested,
			Channel:   event.ChannelEmail,
			Language:  "en",
			Subject:   "Reassignment for {{resourceName}}",
			Body:      "Alternatives: {{equivalentResources}}",
			Variables: []string{"resourceName", "equivalentResources"},
		},
		{
			ID:        "maint-email-en",
			EventType: event.TypeMaintenanceScheduled,
			Channel:   event.ChannelEmail,
			Language:  "en",
			Subject:   "Maintenance on {{resourceName}}",
			Body:      "Scheduled for {{startTime}}",
			Variables: []string{"resourceName", "startTime"},
		},
	}
	for _, tpl := range templates {
		if err := reg.Put(tpl); err != nil {
			t.Fatalf("put template: %v", err)
		}
	}

	transport := channel.NewSimulatedTransport()
	d := dispatch.NewDispatcher(reg, transport, nil, zerolog.Nop(), 2)
	resolver := directory.NewResolver(&fakeUsers{users: users}, zerolog.Nop())
	return NewRouter(resolver, resources, d, zerolog.Nop()), transport
}

func emailOnlyRecipient(id string) directory.Recipient {
	return directory.Recipient{
		UserID:            id,
		Email:             id + "@example.com",
		PreferredLanguage: "en",
		Preferences:       directory.Preferences{Email: true},
	}
}

func TestRouteSkipsExcludedAndUnknown(t *testing.T) {
	r, transport := newTestRouter(t, nil, &fakeResources{})
	for _, typ := range []string{event.TypeWaitingListQueueReordered, "SomethingNobodyKnows"} {
		ev := event.New(typ, "waiting_list", "wl-1", "u1", nil)
		result, err := r.Route(context.Background(), ev)
		if err != nil {
			t.Fatalf("skip must not be an error: %v", err)
		}
		if result != nil {
			t.Fatalf("expected skip for %s, got %+v", typ, result)
		}
	}
	if len(transport.Deliveries()) != 0 {
		t.Fatalf("nothing should have been sent")
	}
}

func TestRouteSkipsWhenNoRecipientsResolve(t *testing.T) {
	r, _ := newTestRouter(t, nil, &fakeResources{})
	ev := event.New(event.TypeWaitingListSlotAvailable, "waiting_list", "wl-1", "", map[string]any{
		"nextInLine": map[string]any{"userId": "ghost"},
	})
	result, err := r.Route(context.Background(), ev)
	if err != nil || result != nil {
		t.Fatalf("expected skip, got result=%+v err=%v", result, err)
	}
}

func TestRouteSlotAvailableEndToEnd(t *testing.T) {
	users := map[string]directory.Recipient{"u7": emailOnlyRecipient("u7")}
	resources := &fakeResources{resources: map[string]directory.ResourceInfo{
		"court-3": {ID: "court-3", Name: "Court 3", Type: "court"},
	}}
	r, transport := newTestRouter(t, users, resources)

	deadline := time.Now().Add(10 * time.Minute).UTC().Format(time.RFC3339)
	ev := event.New(event.TypeWaitingListSlotAvailable, "waiting_list", "wl-1", "", map[string]any{
		"nextInLine":           map[string]any{"userId": "u7"},
		"resourceId":           "court-3",
		"confirmationDeadline": deadline,
	})

	result, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a dispatch result")
	}
	if result.Status != dispatch.StatusSent || result.TotalSent != 1 {
		t.Fatalf("status=%s sent=%d", result.Status, result.TotalSent)
	}

	deliveries := transport.Deliveries()
	if len(deliveries) != 1 || deliveries[0].Channel != event.ChannelEmail {
		t.Fatalf("deliveries = %+v", deliveries)
	}
	if deliveries[0].Message.Subject != "Slot for Court 3" {
		t.Fatalf("subject = %q", deliveries[0].Message.Subject)
	}
}

func TestRouteSlotAvailablePastDeadlineSendsNothing(t *testing.T) {
	users := map[string]directory.Recipient{"u7": emailOnlyRecipient("u7")}
	r, transport := newTestRouter(t, users, &fakeResources{})

	ev := event.New(event.TypeWaitingListSlotAvailable, "waiting_list", "wl-1", "", map[string]any{
		"nextInLine":           map[string]any{"userId": "u7"},
		"confirmationDeadline": time.Now().Add(-time.Minute).UTC().Format(time.RFC3339),
	})

	result, err := r.Route(context.Background(), ev)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result == nil {
		t.Fatalf("expired dispatch still yields an auditable result")
	}
	if result.TotalSent != 0 || result.TotalFailed != 0 {
		t.Fatalf("sent=%d failed=%d, expected 0/0", result.TotalSent, result.TotalFailed)
	}
	if len(transport.Deliveries()) != 0 {
		t.Fatalf("transport must not be touched after the deadline")
	}
}

func TestRouteReassignmentEnrichesEquivalents(t *testing.T) {
	users := map[string]directory.Recipient{"requester": emailOnlyRecipient("requester")}
	resources := &fakeResources{
		resources: map[string]directory.ResourceInfo{
			"room-1": {ID: "room-1", Name: "Room 1", Type: "room"},
		},
		equivalents: []directory.ResourceInfo{
			{ID: "room-2", Name: "Room 2"},
			{ID: "room-5", Name: "Room 5"},
		},
	}
	r, transport := newTestRouter(t, users, resources)

	ev := event.New(event.TypeReassignmentRequested, "reassignment", "ra-1", "someone-else", map[string]any{
		"requestedBy": "requester",
		"resourceId":  "room-1",
		"criteria":    map[string]any{"capacity": "10"},
	})

	result, err := r.Route(context.Background(), ev)
	if err != nil || result == nil {
		t.Fatalf("route: result=%+v err=%v", result, err)
	}

	deliveries := transport.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(deliveries))
	}
	if deliveries[0].UserID != "requester" {
		t.Fatalf("reassignment must notify requestedBy, got %s", deliveries[0].UserID)
	}
	if deliveries[0].Message.Body != "Alternatives: Room 2, Room 5" {
		t.Fatalf("body = %q", deliveries[0].Message.Body)
	}
}

func TestRouteMaintenanceFansOutToAffectedUsers(t *testing.T) {
	users := map[string]directory.Recipient{
		"u1": emailOnlyRecipient("u1"),
		"u2": emailOnlyRecipient("u2"),
	}
	resources := &fakeResources{resources: map[string]directory.ResourceInfo{
		"pool": {ID: "pool", Name: "Pool", Type: "pool"},
	}}
	r, transport := newTestRouter(t, users, resources)

	ev := event.New(event.TypeMaintenanceScheduled, "resource", "pool", "admin", map[string]any{
		"resourceId":      "pool",
		"startTime":       "2026-09-01T08:00:00Z",
		"affectedUserIds": []any{"u1", "u2", "ghost"},
	})

	result, err := r.Route(context.Background(), ev)
	if err != nil || result == nil {
		t.Fatalf("route: result=%+v err=%v", result, err)
	}
	if result.TotalSent != 2 {
		t.Fatalf("sent=%d, expected 2", result.TotalSent)
	}
	if len(transport.Deliveries()) != 2 {
		t.Fatalf("deliveries = %d", len(transport.Deliveries()))
	}
}
