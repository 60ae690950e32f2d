package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// WebhookSender POSTs an alert envelope to the recipient's configured URL
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a webhook sender with a 10s request timeout
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{client: &http.Client{Timeout: 10 * time.Second}}
}

// Channel implements Sender
func (s *WebhookSender) Channel() models.Channel { return models.ChannelWebhook }

// webhookEnvelope is the JSON body posted to the recipient's endpoint
type webhookEnvelope struct {
	Event string        `json:"event"`
	Alert *models.Alert `json:"alert"`
}

// Send posts the alert.triggered envelope. Delivered only on a 2xx
// response; anything else, timeouts included, records a failure.
func (s *WebhookSender) Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult {
	if pref.WebhookURL == nil || *pref.WebhookURL == "" {
		return failure("", alert.Message, fmt.Sprintf("Webhook URL not configured for user %s", pref.UserID))
	}
	url := *pref.WebhookURL

	body, err := json.Marshal(webhookEnvelope{Event: "alert.triggered", Alert: alert})
	if err != nil {
		return failure(url, alert.Message, fmt.Sprintf("Webhook delivery failed: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(url, string(body), fmt.Sprintf("Webhook delivery failed: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return failure(url, string(body), fmt.Sprintf("Webhook delivery failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(url, string(body), fmt.Sprintf("Webhook delivery failed: HTTP %d", resp.StatusCode))
	}

	return &SendResult{
		Status:      models.StatusDelivered,
		Recipient:   url,
		Content:     string(body),
		DeliveredAt: now(),
	}
}
