package channel

import (
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
)

// Config tags a channel selected for a dispatch with the priority the
// catalog assigned to the triggering event type.
type Config struct {
	Type     event.Channel  `json:"type"`
	Priority event.Priority `json:"priority"`
}

// Eligible reports whether a channel may be used for a recipient: the
// user must have opted in AND own the contact artifact the channel
// delivers to. Channels outside the table are never eligible.
func Eligible(r *directory.Recipient, ch event.Channel) bool {
	if r == nil {
		return false
	}
	switch ch {
	case event.ChannelEmail:
		return r.Preferences.Email && r.Email != ""
	case event.ChannelSMS:
		return r.Preferences.SMS && r.Phone != ""
	case event.ChannelPush:
		return r.Preferences.Push && len(r.PushTokens) > 0
	case event.ChannelInApp:
		return r.Preferences.InApp
	case event.ChannelWhatsApp:
		return r.Preferences.WhatsApp && r.Phone != ""
	default:
		return false
	}
}
