package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

func TestGetOrCreateInsertsDefaults(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndBrand(t, db)
	prefs := NewPreferenceRepository(db)

	p, err := prefs.GetOrCreate(userID)
	require.NoError(t, err)

	assert.True(t, p.EmailEnabled)
	assert.True(t, p.InAppEnabled)
	assert.False(t, p.SMSEnabled)
	assert.False(t, p.WebhookEnabled)
	assert.Equal(t, 10, p.FrequencyLimit)
	assert.Nil(t, p.QuietHoursStart)
	assert.Nil(t, p.QuietHoursEnd)

	// Second call reads the persisted row instead of reinserting.
	again, err := prefs.GetOrCreate(userID)
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt, again.CreatedAt)
}

func TestPreferenceUpdateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	userID, _ := seedUserAndBrand(t, db)
	prefs := NewPreferenceRepository(db)

	p, err := prefs.GetOrCreate(userID)
	require.NoError(t, err)

	start, end := "22:00", "07:00"
	webhook := "https://hooks.example.com/alerts"
	p.SMSEnabled = true
	p.EmailEnabled = false
	p.WebhookEnabled = true
	p.WebhookURL = &webhook
	p.QuietHoursStart = &start
	p.QuietHoursEnd = &end
	p.FrequencyLimit = 3
	require.NoError(t, prefs.Update(p))

	got, err := prefs.GetOrCreate(userID)
	require.NoError(t, err)
	assert.True(t, got.SMSEnabled)
	assert.False(t, got.EmailEnabled)
	assert.True(t, got.ChannelEnabled(models.ChannelWebhook))
	require.NotNil(t, got.WebhookURL)
	assert.Equal(t, webhook, *got.WebhookURL)
	require.NotNil(t, got.QuietHoursStart)
	assert.Equal(t, "22:00", *got.QuietHoursStart)
	assert.Equal(t, 3, got.FrequencyLimit)
}

func TestPreferenceUpdateMissingUser(t *testing.T) {
	db := newTestDB(t)
	prefs := NewPreferenceRepository(db)

	p := models.DefaultPreference("nobody")
	assert.ErrorIs(t, prefs.Update(p), models.ErrNotFound)
}
