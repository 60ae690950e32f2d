package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
)

// smsMaxLength is the carrier-safe single-segment limit
const smsMaxLength = 160

// SMSSender delivers alerts through an HTTP SMS provider API
type SMSSender struct {
	users  *repository.UserRepository
	apiURL string
	apiKey string
	client *http.Client
}

// NewSMSSender creates an SMS sender for the given provider endpoint
func NewSMSSender(users *repository.UserRepository, apiURL, apiKey string) *SMSSender {
	return &SMSSender{
		users:  users,
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Channel implements Sender
func (s *SMSSender) Channel() models.Channel { return models.ChannelSMS }

// Send resolves the recipient's phone number and posts the truncated
// message to the provider.
func (s *SMSSender) Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult {
	phone := ""
	if pref.PhoneNumber != nil && *pref.PhoneNumber != "" {
		phone = *pref.PhoneNumber
	} else {
		user, err := s.users.GetUser(pref.UserID)
		if err != nil || user.Phone == nil || *user.Phone == "" {
			return failure("", alert.Message, fmt.Sprintf("Phone number not found for user %s", pref.UserID))
		}
		phone = *user.Phone
	}

	text := truncate(fmt.Sprintf("[%s] %s", models.SeverityLabel(alert.Severity), alert.Message), smsMaxLength)

	if err := s.post(ctx, phone, text); err != nil {
		return failure(phone, text, fmt.Sprintf("SMS sending failed: %v", err))
	}

	return &SendResult{
		Status:    models.StatusSent,
		Recipient: phone,
		Content:   text,
		SentAt:    now(),
	}
}

func (s *SMSSender) post(ctx context.Context, phone, text string) error {
	if s.apiURL == "" {
		return fmt.Errorf("SMS provider not configured")
	}

	body, _ := json.Marshal(map[string]string{"to": phone, "message": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// truncate shortens s to at most max bytes, appending an ellipsis when cut.
// The cut always lands on a rune boundary so multi-byte characters in brand
// names never produce invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
