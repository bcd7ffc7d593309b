package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webhook posts alert messages as JSON to a fixed URL. Used for both the
// generic webhook channel and SMS provider gateways that accept HTTP POST.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook sender. The HTTP client is time-bounded so a
// slow target cannot hold a delivery goroutine indefinitely.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts {"message": ...} to the target URL.
func (w *Webhook) Send(ctx context.Context, message string) error {
	if w.url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	body, _ := json.Marshal(map[string]string{"message": message})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
