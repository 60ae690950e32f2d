package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

func seedDelivery(t *testing.T, deliveries *DeliveryRepository, alertID, userID string, channel models.Channel, status models.DeliveryStatus) {
	t.Helper()
	require.NoError(t, deliveries.Create(&models.NotificationDelivery{
		AlertID:   alertID,
		UserID:    userID,
		Channel:   channel,
		Status:    status,
		Recipient: "owner@example.com",
		Content:   "test",
	}))
}

func TestDeliveryStatisticsSuccessRate(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	deliveries := NewDeliveryRepository(db)

	// 40 email, 20 sms, 15 webhook, 25 in_app; 80 sent, 15 delivered, 5 failed.
	channels := []struct {
		channel models.Channel
		count   int
	}{
		{models.ChannelEmail, 40},
		{models.ChannelSMS, 20},
		{models.ChannelWebhook, 15},
		{models.ChannelInApp, 25},
	}
	placed := 0
	for _, c := range channels {
		for i := 0; i < c.count; i++ {
			status := models.StatusSent
			switch {
			case placed >= 95:
				status = models.StatusFailed
			case placed >= 80:
				status = models.StatusDelivered
			}
			seedDelivery(t, deliveries, a.ID, userID, c.channel, status)
			placed++
		}
	}

	stats, err := deliveries.Statistics("")
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalSent)
	assert.Equal(t, 40, stats.ByChannel[models.ChannelEmail])
	assert.Equal(t, 20, stats.ByChannel[models.ChannelSMS])
	assert.Equal(t, 15, stats.ByChannel[models.ChannelWebhook])
	assert.Equal(t, 25, stats.ByChannel[models.ChannelInApp])
	assert.Equal(t, 80, stats.ByStatus[models.StatusSent])
	assert.Equal(t, 15, stats.ByStatus[models.StatusDelivered])
	assert.Equal(t, 5, stats.ByStatus[models.StatusFailed])
	assert.InDelta(t, 95.0, stats.SuccessRate, 1e-9)
}

func TestDeliveryStatisticsEmpty(t *testing.T) {
	db := newTestDB(t)
	deliveries := NewDeliveryRepository(db)

	stats, err := deliveries.Statistics("")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSent)
	assert.Zero(t, stats.SuccessRate)
}

func TestDeliveryListFilters(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	deliveries := NewDeliveryRepository(db)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelEmail, models.StatusSent)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelSMS, models.StatusSent)

	email := models.ChannelEmail
	got, err := deliveries.List(models.DeliveryFilter{UserID: userID, Channel: &email})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ChannelEmail, got[0].Channel)

	got, err = deliveries.List(models.DeliveryFilter{UserID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCountRecentByUser(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	deliveries := NewDeliveryRepository(db)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelEmail, models.StatusSent)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelInApp, models.StatusDelivered)

	n, err := deliveries.CountRecentByUser(userID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = deliveries.CountRecentByUser(userID, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCountRecentByUserIgnoresFailedRows(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	deliveries := NewDeliveryRepository(db)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelEmail, models.StatusSent)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelEmail, models.StatusFailed)
	seedDelivery(t, deliveries, a.ID, userID, models.ChannelSMS, models.StatusBounced)

	// Blocked or bounced attempts never count against the cap, otherwise
	// a capped user could stay capped forever on their own failure rows.
	n, err := deliveries.CountRecentByUser(userID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInAppMarkRead(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	deliveries := NewDeliveryRepository(db)
	n := &models.InAppNotification{
		UserID:   userID,
		AlertID:  a.ID,
		Title:    a.Title,
		Message:  a.Message,
		Severity: a.Severity,
	}
	require.NoError(t, deliveries.CreateInApp(n))

	require.NoError(t, deliveries.MarkRead(n.ID, userID))

	inbox, err := deliveries.ListInApp(userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].IsRead)

	// Wrong user never matches the row.
	assert.ErrorIs(t, deliveries.MarkRead(n.ID, "intruder"), models.ErrNotFound)
	assert.ErrorIs(t, deliveries.MarkRead("missing", userID), models.ErrNotFound)
}
