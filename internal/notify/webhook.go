package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const webhookTimeout = 5 * time.Second

// WebhookNotifier posts each delivery as JSON to a configured URL.
type WebhookNotifier struct {
	http *http.Client
	url  string
}

// NewWebhook creates a notifier targeting the given URL.
func NewWebhook(url string) *WebhookNotifier {
	return &WebhookNotifier{
		http: &http.Client{Timeout: webhookTimeout},
		url:  url,
	}
}

func (w *WebhookNotifier) NotifyDelivery(d Delivery) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal delivery: %w", err)
	}

	resp, err := w.http.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w", w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", w.url, resp.StatusCode, data)
	}
	return nil
}
