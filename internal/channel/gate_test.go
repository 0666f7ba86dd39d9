package channel

import (
	"testing"

	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
)

func TestEligibleTable(t *testing.T) {
	// The contact artifact per channel, applied only when present.
	withContact := map[event.Channel]func(*directory.Recipient){
		event.ChannelEmail:    func(r *directory.Recipient) { r.Email = "a@b.com" },
		event.ChannelSMS:      func(r *directory.Recipient) { r.Phone = "+15550100" },
		event.ChannelPush:     func(r *directory.Recipient) { r.PushTokens = []string{"tok"} },
		event.ChannelInApp:    func(r *directory.Recipient) {},
		event.ChannelWhatsApp: func(r *directory.Recipient) { r.Phone = "+15550100" },
	}
	setPref := map[event.Channel]func(*directory.Preferences, bool){
		event.ChannelEmail:    func(p *directory.Preferences, v bool) { p.Email = v },
		event.ChannelSMS:      func(p *directory.Preferences, v bool) { p.SMS = v },
		event.ChannelPush:     func(p *directory.Preferences, v bool) { p.Push = v },
		event.ChannelInApp:    func(p *directory.Preferences, v bool) { p.InApp = v },
		event.ChannelWhatsApp: func(p *directory.Preferences, v bool) { p.WhatsApp = v },
	}

	for ch := range withContact {
		for _, pref := range []bool{true, false} {
			for _, contact := range []bool{true, false} {
				r := &directory.Recipient{UserID: "u1"}
				setPref[ch](&r.Preferences, pref)
				if contact {
					withContact[ch](r)
				}
				// IN_APP has no contact artifact requirement.
				want := pref && (contact || ch == event.ChannelInApp)
				if got := Eligible(r, ch); got != want {
					t.Fatalf("Eligible(%s, pref=%t, contact=%t) = %t, want %t", ch, pref, contact, got, want)
				}
			}
		}
	}
}

func TestEligibleUnknownChannel(t *testing.T) {
	r := &directory.Recipient{
		UserID:      "u1",
		Email:       "a@b.com",
		Phone:       "+15550100",
		PushTokens:  []string{"tok"},
		Preferences: directory.Preferences{Email: true, SMS: true, Push: true, InApp: true, WhatsApp: true},
	}
	if Eligible(r, event.Channel("PIGEON")) {
		t.Fatalf("unknown channel must never be eligible")
	}
	if Eligible(nil, event.ChannelEmail) {
		t.Fatalf("nil recipient must never be eligible")
	}
}
