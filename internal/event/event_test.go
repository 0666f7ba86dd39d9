package event

import (
	"testing"
	"time"
)

func TestNewAssignsUniqueIDs(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		ev := New(TypeWaitingListJoined, "waiting_list", "wl-1", "u1", nil)
		if ev.EventID == "" {
			t.Fatalf("empty event id")
		}
		if _, dup := seen[ev.EventID]; dup {
			t.Fatalf("duplicate event id %s", ev.EventID)
		}
		seen[ev.EventID] = struct{}{}
	}
}

func TestEventDataAccessors(t *testing.T) {
	deadline := "2026-08-29T12:10:00Z"
	ev := New(TypeWaitingListSlotAvailable, "waiting_list", "wl-1", "", map[string]any{
		"resourceId":           "court-3",
		"nextInLine":           map[string]any{"userId": "u7"},
		"confirmationDeadline": deadline,
		"badDeadline":          "yesterday-ish",
	})

	if got := ev.StringField("resourceId"); got != "court-3" {
		t.Fatalf("StringField = %q", got)
	}
	if got := ev.StringField("missing"); got != "" {
		t.Fatalf("missing field should be empty, got %q", got)
	}
	if got := ev.NestedStringField("nextInLine", "userId"); got != "u7" {
		t.Fatalf("NestedStringField = %q", got)
	}
	if got := ev.NestedStringField("resourceId", "userId"); got != "" {
		t.Fatalf("non-object nesting should be empty, got %q", got)
	}

	want, _ := time.Parse(time.RFC3339, deadline)
	if got := ev.TimeField("confirmationDeadline"); !got.Equal(want) {
		t.Fatalf("TimeField = %v", got)
	}
	if got := ev.TimeField("badDeadline"); !got.IsZero() {
		t.Fatalf("malformed instant must parse to zero, got %v", got)
	}
}
