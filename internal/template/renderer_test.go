package template

import (
	"testing"

	"github.com/example/booking-notifier/internal/event"
)

func TestRenderSubstitutesTokens(t *testing.T) {
	tpl := &Template{
		ID:        "tpl",
		EventType: event.TypeWaitingListSlotAvailable,
		Channel:   event.ChannelEmail,
		Language:  "en",
		Subject:   "Slot for {{ resourceName }}",
		Body:      "Hi {{userName}}, {{resourceName}} is free. Capacity: {{capacity}}.",
		Variables: []string{"resourceName", "userName", "capacity"},
	}
	vars := map[string]any{
		"resourceName": "Court 3",
		"userName":     "Ada",
		"capacity":     12,
	}

	got := Render(tpl, vars)
	if got.Subject != "Slot for Court 3" {
		t.Fatalf("subject = %q", got.Subject)
	}
	if got.Body != "Hi Ada, Court 3 is free. Capacity: 12." {
		t.Fatalf("body = %q", got.Body)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	tpl := &Template{
		ID:        "tpl",
		EventType: event.TypeReassignmentRequested,
		Channel:   event.ChannelInApp,
		Language:  "en",
		Body:      "{{a}} {{b}} {{a}}",
		Variables: []string{"a", "b"},
	}
	vars := map[string]any{"a": "x", "b": "y"}

	first := Render(tpl, vars)
	for i := 0; i < 100; i++ {
		if Render(tpl, vars) != first {
			t.Fatalf("render is not deterministic")
		}
	}
}

func TestRenderLeavesUnmatchedTokensVerbatim(t *testing.T) {
	tpl := &Template{
		ID:        "tpl",
		EventType: event.TypeMaintenanceScheduled,
		Channel:   event.ChannelInApp,
		Language:  "en",
		Body:      "Maintenance on {{resourceName}} at {{startTime}}",
		Variables: []string{"resourceName", "startTime"},
	}

	got := Render(tpl, map[string]any{})
	if got.Body != "Maintenance on {{resourceName}} at {{startTime}}" {
		t.Fatalf("unmatched tokens must stay verbatim, got %q", got.Body)
	}

	got = Render(tpl, map[string]any{"resourceName": "Pool"})
	if got.Body != "Maintenance on Pool at {{startTime}}" {
		t.Fatalf("partial substitution broken: %q", got.Body)
	}
}

func TestRenderEmptyFieldsStayEmpty(t *testing.T) {
	tpl := &Template{
		ID:        "tpl",
		EventType: event.TypeCategoryCreated,
		Channel:   event.ChannelInApp,
		Language:  "en",
		Body:      "done",
	}
	got := Render(tpl, nil)
	if got.Subject != "" || got.Title != "" || got.HTMLBody != "" {
		t.Fatalf("empty fields must render empty: %+v", got)
	}
}
