package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HTTPUserDirectory talks to the user service over its REST surface.
type HTTPUserDirectory struct {
	BaseURL string
	Client  *http.Client
}

func (d *HTTPUserDirectory) GetUser(ctx context.Context, id string) (*Recipient, error) {
	var rcpt Recipient
	found, err := doJSON(ctx, d.Client, http.MethodGet, d.BaseURL+"/v1/users/"+id, nil, &rcpt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &rcpt, nil
}

func (d *HTTPUserDirectory) GetUsersBatch(ctx context.Context, ids []string) (BatchResult, error) {
	var res BatchResult
	body := map[string]any{"ids": ids}
	if _, err := doJSON(ctx, d.Client, http.MethodPost, d.BaseURL+"/v1/users/batch", body, &res); err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

func (d *HTTPUserDirectory) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error {
	found, err := doJSON(ctx, d.Client, http.MethodPut, d.BaseURL+"/v1/users/"+userID+"/preferences", prefs, nil)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// HTTPResourceDirectory talks to the resource service.
type HTTPResourceDirectory struct {
	BaseURL string
	Client  *http.Client
}

func (d *HTTPResourceDirectory) GetResource(ctx context.Context, id string) (*ResourceInfo, error) {
	var info ResourceInfo
	found, err := doJSON(ctx, d.Client, http.MethodGet, d.BaseURL+"/v1/resources/"+id, nil, &info)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &info, nil
}

func (d *HTTPResourceDirectory) GetResourcesBatch(ctx context.Context, ids []string) ([]ResourceInfo, []string, error) {
	var res struct {
		Found    []ResourceInfo `json:"found"`
		NotFound []string       `json:"not_found"`
	}
	body := map[string]any{"ids": ids}
	if _, err := doJSON(ctx, d.Client, http.MethodPost, d.BaseURL+"/v1/resources/batch", body, &res); err != nil {
		return nil, nil, err
	}
	return res.Found, res.NotFound, nil
}

func (d *HTTPResourceDirectory) FindEquivalents(ctx context.Context, resourceID string, criteria map[string]string) ([]ResourceInfo, error) {
	var res struct {
		Resources []ResourceInfo `json:"resources"`
	}
	if _, err := doJSON(ctx, d.Client, http.MethodPost, d.BaseURL+"/v1/resources/"+resourceID+"/equivalents", criteria, &res); err != nil {
		return nil, err
	}
	return res.Resources, nil
}

// doJSON issues one JSON request with retry on transient failures.
// A 404 is reported as found=false, not an error; other 4xx responses
// are permanent.
func doJSON(ctx context.Context, client *http.Client, method, url string, in, out any) (bool, error) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return false, err
		}
	}

	found := true
	op := backoff.NewExponentialBackOff()
	op.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			found = false
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("directory temporary error: %s", resp.Status)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("directory permanent error: %s", resp.Status))
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode directory response: %w", err))
		}
		return nil
	}, backoff.WithContext(op, ctx))
	if err != nil {
		return false, err
	}
	return found, nil
}
