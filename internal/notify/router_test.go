package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

type fakePrefStore struct {
	pref *models.NotificationPreference
	err  error
}

func (f *fakePrefStore) GetOrCreate(userID string) (*models.NotificationPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pref, nil
}

type fakeDeliveryStore struct {
	created  []*models.NotificationDelivery
	count    int
	countErr error
}

func (f *fakeDeliveryStore) Create(d *models.NotificationDelivery) error {
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDeliveryStore) CountRecentByUser(userID string, since time.Time) (int, error) {
	return f.count, f.countErr
}

type fakeSender struct {
	channel models.Channel
	result  *SendResult
	calls   int
}

func (f *fakeSender) Channel() models.Channel { return f.channel }

func (f *fakeSender) Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult {
	f.calls++
	return f.result
}

func sentResult() *SendResult {
	return &SendResult{
		Status:    models.StatusSent,
		Recipient: "owner@example.com",
		Content:   "body",
		SentAt:    now(),
	}
}

func testAlert() *models.Alert {
	return &models.Alert{
		ID:       "a-1",
		BrandID:  "b-1",
		Severity: models.SeverityCritical,
		Title:    "Overall Score Alert - Critical",
		Message:  "Overall Score has dropped below threshold.",
	}
}

func newTestRouter(pref *models.NotificationPreference, store *fakeDeliveryStore, senders ...Sender) *Router {
	return NewRouter(&fakePrefStore{pref: pref}, store, senders, time.Hour)
}

func TestDispatchSendsWhenPolicyAllows(t *testing.T) {
	pref := models.DefaultPreference("u-1")
	store := &fakeDeliveryStore{}
	email := &fakeSender{channel: models.ChannelEmail, result: sentResult()}
	r := newTestRouter(pref, store, email)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, models.StatusSent, d.Status)
	assert.Equal(t, "owner@example.com", d.Recipient)
	require.Len(t, store.created, 1)
}

func TestDispatchUnsupportedChannel(t *testing.T) {
	pref := models.DefaultPreference("u-1")
	store := &fakeDeliveryStore{}
	r := newTestRouter(pref, store)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.Channel("pager"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, d.Status)
	require.NotNil(t, d.ErrorMessage)
	assert.Equal(t, "Unsupported notification channel: pager", *d.ErrorMessage)
	require.Len(t, store.created, 1)
}

func TestDispatchDisabledChannel(t *testing.T) {
	pref := models.DefaultPreference("u-1") // sms off by default
	store := &fakeDeliveryStore{}
	sms := &fakeSender{channel: models.ChannelSMS, result: sentResult()}
	r := newTestRouter(pref, store, sms)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelSMS)
	require.NoError(t, err)

	assert.Equal(t, 0, sms.calls)
	assert.Equal(t, models.StatusFailed, d.Status)
	require.NotNil(t, d.ErrorMessage)
	assert.Equal(t, "Notifications disabled for channel: sms", *d.ErrorMessage)
}

func TestDispatchQuietHours(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		clock   string
		blocked bool
	}{
		{"inside same-day window", "09:00", "17:00", "12:30", true},
		{"outside same-day window", "09:00", "17:00", "18:00", false},
		{"end bound is exclusive", "09:00", "17:00", "17:00", false},
		{"start bound is inclusive", "09:00", "17:00", "09:00", true},
		{"wraps midnight, late evening", "22:00", "07:00", "23:15", true},
		{"wraps midnight, early morning", "22:00", "07:00", "06:59", true},
		{"wraps midnight, daytime", "22:00", "07:00", "12:00", false},
		{"equal bounds disable window", "08:00", "08:00", "08:00", false},
		{"malformed start disables window", "9am", "17:00", "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref := models.DefaultPreference("u-1")
			pref.QuietHoursStart = &tt.start
			pref.QuietHoursEnd = &tt.end

			store := &fakeDeliveryStore{}
			email := &fakeSender{channel: models.ChannelEmail, result: sentResult()}
			r := newTestRouter(pref, store, email)
			r.nowFn = func() time.Time {
				clock, err := time.Parse("15:04", tt.clock)
				require.NoError(t, err)
				return time.Date(2025, 6, 1, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
			}

			d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelEmail)
			require.NoError(t, err)

			if tt.blocked {
				assert.Equal(t, models.StatusFailed, d.Status)
				require.NotNil(t, d.ErrorMessage)
				assert.Equal(t, "Notification blocked due to quiet hours", *d.ErrorMessage)
				assert.Equal(t, 0, email.calls)
			} else {
				assert.Equal(t, models.StatusSent, d.Status)
				assert.Equal(t, 1, email.calls)
			}
			require.Len(t, store.created, 1)
		})
	}
}

func TestDispatchFrequencyLimit(t *testing.T) {
	pref := models.DefaultPreference("u-1")
	pref.FrequencyLimit = 1

	store := &fakeDeliveryStore{count: 1}
	email := &fakeSender{channel: models.ChannelEmail, result: sentResult()}
	r := newTestRouter(pref, store, email)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, 0, email.calls)
	assert.Equal(t, models.StatusFailed, d.Status)
	require.NotNil(t, d.ErrorMessage)
	assert.Equal(t, "Notification frequency limit exceeded", *d.ErrorMessage)
}

func TestDispatchFrequencyCheckFailsOpen(t *testing.T) {
	pref := models.DefaultPreference("u-1")
	pref.FrequencyLimit = 1

	store := &fakeDeliveryStore{countErr: errors.New("db gone")}
	email := &fakeSender{channel: models.ChannelEmail, result: sentResult()}
	r := newTestRouter(pref, store, email)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, models.StatusSent, d.Status)
}

func TestDispatchRecordsTransportFailure(t *testing.T) {
	pref := models.DefaultPreference("u-1")
	store := &fakeDeliveryStore{}
	email := &fakeSender{
		channel: models.ChannelEmail,
		result:  failure("owner@example.com", "body", "Email sending failed: connection refused"),
	}
	r := newTestRouter(pref, store, email)

	d, err := r.Dispatch(context.Background(), testAlert(), "u-1", models.ChannelEmail)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, d.Status)
	require.NotNil(t, d.ErrorMessage)
	assert.Contains(t, *d.ErrorMessage, "Email sending failed")
	require.Len(t, store.created, 1)
}
