package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// PreferenceStore is the slice of the preference repository the router needs
type PreferenceStore interface {
	GetOrCreate(userID string) (*models.NotificationPreference, error)
}

// DeliveryStore records delivery attempts and answers the frequency-cap query
type DeliveryStore interface {
	Create(d *models.NotificationDelivery) error
	CountRecentByUser(userID string, since time.Time) (int, error)
}

// Router applies per-recipient delivery policy and dispatches alerts to
// channel senders. Every dispatch outcome, success or policy failure,
// produces exactly one delivery record.
type Router struct {
	prefs      PreferenceStore
	deliveries DeliveryStore
	senders    map[models.Channel]Sender
	freqWindow time.Duration

	// nowFn is swappable so quiet-hours tests can pin the clock
	nowFn func() time.Time
}

// NewRouter creates a router over the given channel senders
func NewRouter(prefs PreferenceStore, deliveries DeliveryStore, senders []Sender, freqWindow time.Duration) *Router {
	m := make(map[models.Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Router{
		prefs:      prefs,
		deliveries: deliveries,
		senders:    m,
		freqWindow: freqWindow,
		nowFn:      time.Now,
	}
}

// Dispatch delivers one alert to one user over one channel, applying the
// policy checks in order: channel enabled, quiet hours, frequency cap.
// Policy and transport failures come back as the failed delivery record
// with a nil error; a non-nil error means the attempt could not even be
// recorded.
func (r *Router) Dispatch(ctx context.Context, alert *models.Alert, userID string, channel models.Channel) (*models.NotificationDelivery, error) {
	pref, err := r.prefs.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences for user %s: %w", userID, err)
	}

	sender, supported := r.senders[channel]
	if !supported {
		return r.record(alert, userID, channel, failure("", alert.Message,
			fmt.Sprintf("Unsupported notification channel: %s", channel)))
	}

	if !pref.ChannelEnabled(channel) {
		return r.record(alert, userID, channel, failure("", alert.Message,
			fmt.Sprintf("Notifications disabled for channel: %s", channel)))
	}

	// Quiet hours block every severity alike, critical included.
	if inQuietHours(pref, r.nowFn()) {
		return r.record(alert, userID, channel, failure("", alert.Message,
			"Notification blocked due to quiet hours"))
	}

	if pref.FrequencyLimit > 0 {
		count, err := r.deliveries.CountRecentByUser(userID, r.nowFn().Add(-r.freqWindow))
		if err != nil {
			// Same fail-open posture as suppression: a lost count must
			// not swallow a real alert.
			log.Printf("Frequency check failed for user %s: %v (failing open)", userID, err)
		} else if count >= pref.FrequencyLimit {
			return r.record(alert, userID, channel, failure("", alert.Message,
				"Notification frequency limit exceeded"))
		}
	}

	return r.record(alert, userID, channel, sender.Send(ctx, alert, pref))
}

// record persists the delivery row built from the send result
func (r *Router) record(alert *models.Alert, userID string, channel models.Channel, res *SendResult) (*models.NotificationDelivery, error) {
	d := &models.NotificationDelivery{
		AlertID:      alert.ID,
		UserID:       userID,
		Channel:      channel,
		Status:       res.Status,
		Recipient:    res.Recipient,
		Subject:      res.Subject,
		Content:      res.Content,
		ErrorMessage: res.ErrorMessage,
		SentAt:       res.SentAt,
		DeliveredAt:  res.DeliveredAt,
	}
	if err := r.deliveries.Create(d); err != nil {
		return nil, fmt.Errorf("failed to record delivery: %w", err)
	}
	return d, nil
}

// inQuietHours reports whether at falls inside the preference's local
// [start, end) window. The window may wrap past midnight. Malformed or
// missing bounds disable the window.
func inQuietHours(p *models.NotificationPreference, at time.Time) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}

	start, err := parseClock(*p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(*p.QuietHoursEnd)
	if err != nil {
		return false
	}
	if start == end {
		return false
	}

	cur := at.Hour()*60 + at.Minute()

	if start < end {
		return cur >= start && cur < end
	}
	// Wraps midnight, e.g. 22:00–07:00.
	return cur >= start || cur < end
}

// parseClock converts "HH:MM" to minutes since midnight
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
