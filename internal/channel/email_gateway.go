package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
	"github.com/example/booking-notifier/internal/template"
)

// EmailGatewayTransport routes EMAIL through an HTTP mail gateway and
// everything else through a fallback transport. Temporary gateway
// errors are retried briefly; 4xx responses are permanent.
type EmailGatewayTransport struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
	Fallback Transport
}

func (t *EmailGatewayTransport) Send(ctx context.Context, ch event.Channel, rcpt *directory.Recipient, msg template.RenderedMessage) (string, error) {
	if ch != event.ChannelEmail {
		if t.Fallback == nil {
			return "", fmt.Errorf("no transport for channel %s", ch)
		}
		return t.Fallback.Send(ctx, ch, rcpt, msg)
	}

	messageID := "email-" + uuid.NewString()
	payload := map[string]any{
		"message_id": messageID,
		"to":         rcpt.Email,
		"subject":    msg.Subject,
		"body":       msg.Body,
		"html_body":  msg.HTMLBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	op := backoff.NewExponentialBackOff()
	op.MaxElapsedTime = 5 * time.Second
	err = backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, t.Endpoint+"/v1/mail/send", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.APIKey)

		client := t.Client
		if client == nil {
			client = &http.Client{Timeout: 5 * time.Second}
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("mail gateway temporary error: %s", resp.Status)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("mail gateway permanent error: %s", resp.Status))
		}
		return nil
	}, backoff.WithContext(op, ctx))
	if err != nil {
		return "", err
	}
	return messageID, nil
}
