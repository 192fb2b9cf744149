package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Event is the payload posted to the operations webhook
type Event struct {
	Kind      string    `json:"kind"` // "status" or "alert"
	Venue     string    `json:"venue"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Webhook posts operational events to an HTTP endpoint. A Webhook with
// an empty URL is valid and drops everything, so callers never need a
// nil check.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier; an empty URL disables it
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Enabled reports whether events will actually be delivered
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Notify posts the event. Delivery is best-effort: failures are logged
// and never propagate into the feed pipeline.
func (w *Webhook) Notify(ev Event) {
	if !w.Enabled() {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("Failed to encode webhook event", slog.Any("error", err))
		return
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Warn("Webhook delivery failed", slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Warn("Webhook rejected event",
			slog.String("status", resp.Status),
			slog.String("kind", ev.Kind))
	}
}
