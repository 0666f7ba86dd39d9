package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/example/booking-notifier/internal/event"
)

// Template is one parameterized message for a (event type, channel,
// language, optional program) combination. ProgramID scopes a template
// to a single booking program; empty means generally applicable.
type Template struct {
	ID        string        `json:"id"`
	EventType string        `json:"event_type"`
	Channel   event.Channel `json:"channel"`
	Language  string        `json:"language"`
	ProgramID string        `json:"program_id,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Title     string        `json:"title,omitempty"`
	Body      string        `json:"body"`
	HTMLBody  string        `json:"html_body,omitempty"`
	Variables []string      `json:"variables"`
}

// RenderedMessage is the channel-agnostic output of rendering.
type RenderedMessage struct {
	Subject  string `json:"subject,omitempty"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// ValidationError rejects a template write. Missing lists the tokens
// referenced in textual fields but absent from Variables.
type ValidationError struct {
	Reason  string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid template: %s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "invalid template: " + e.Reason
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// tokens returns the distinct substitution tokens referenced across
// all textual fields, sorted for stable error messages.
func (t *Template) tokens() []string {
	seen := map[string]struct{}{}
	for _, field := range []string{t.Subject, t.Title, t.Body, t.HTMLBody} {
		for _, m := range tokenPattern.FindAllStringSubmatch(field, -1) {
			seen[m[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Validate enforces the write-time invariants: required identity
// fields, the channel-specific required fields, and declared-vs-used
// variable completeness.
func (t *Template) Validate() error {
	switch {
	case t.ID == "":
		return &ValidationError{Reason: "id is required"}
	case t.EventType == "":
		return &ValidationError{Reason: "event_type is required"}
	case t.Channel == "":
		return &ValidationError{Reason: "channel is required"}
	case t.Language == "":
		return &ValidationError{Reason: "language is required"}
	case t.Body == "":
		return &ValidationError{Reason: "body is required"}
	}
	if t.Channel == event.ChannelEmail && t.Subject == "" {
		return &ValidationError{Reason: "subject is required for EMAIL templates"}
	}
	if t.Channel == event.ChannelPush && t.Title == "" {
		return &ValidationError{Reason: "title is required for PUSH templates"}
	}

	declared := make(map[string]struct{}, len(t.Variables))
	for _, v := range t.Variables {
		declared[v] = struct{}{}
	}
	var missing []string
	for _, tok := range t.tokens() {
		if _, ok := declared[tok]; !ok {
			missing = append(missing, tok)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Reason: "undeclared variables", Missing: missing}
	}
	return nil
}
