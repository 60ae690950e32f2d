package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

func TestAlertAcknowledgeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityHigh, 55)

	alerts := NewAlertRepository(db)
	require.NoError(t, alerts.Acknowledge(a.ID, userID))

	got, err := alerts.GetByID(a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAcknowledged)
	require.NotNil(t, got.AcknowledgedBy)
	assert.Equal(t, userID, *got.AcknowledgedBy)
	assert.NotNil(t, got.AcknowledgedAt)
	assert.Nil(t, got.ResolvedAt)
}

func TestAlertAcknowledgeNotFound(t *testing.T) {
	db := newTestDB(t)
	alerts := NewAlertRepository(db)
	assert.ErrorIs(t, alerts.Acknowledge("missing", "u-1"), models.ErrNotFound)
}

func TestAlertResolve(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)
	a := seedAlert(t, db, th, models.SeverityLow, 68)

	alerts := NewAlertRepository(db)
	require.NoError(t, alerts.Resolve(a.ID))

	got, err := alerts.GetByID(a.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ResolvedAt)

	assert.ErrorIs(t, alerts.Resolve("missing"), models.ErrNotFound)
}

func TestAlertListFilters(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)

	low := seedAlert(t, db, th, models.SeverityLow, 68)
	high := seedAlert(t, db, th, models.SeverityHigh, 55)
	crit := seedAlert(t, db, th, models.SeverityCritical, 30)

	alerts := NewAlertRepository(db)
	require.NoError(t, alerts.Acknowledge(high.ID, userID))
	require.NoError(t, alerts.Resolve(crit.ID))

	sev := models.SeverityLow
	got, err := alerts.List(brandID, models.AlertFilter{Severity: &sev})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, low.ID, got[0].ID)

	acked := true
	got, err = alerts.List(brandID, models.AlertFilter{Acknowledged: &acked})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, high.ID, got[0].ID)

	unresolved := false
	got, err = alerts.List(brandID, models.AlertFilter{Resolved: &unresolved})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = alerts.List(brandID, models.AlertFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAlertStatistics(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)

	seedAlert(t, db, th, models.SeverityLow, 68)
	seedAlert(t, db, th, models.SeverityHigh, 55)
	resolved := seedAlert(t, db, th, models.SeverityHigh, 54)
	acked := seedAlert(t, db, th, models.SeverityCritical, 30)

	alerts := NewAlertRepository(db)
	require.NoError(t, alerts.Resolve(resolved.ID))
	require.NoError(t, alerts.Acknowledge(acked.ID, userID))

	stats, err := alerts.Statistics(brandID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.BySeverity[models.SeverityLow])
	assert.Equal(t, 2, stats.BySeverity[models.SeverityHigh])
	assert.Equal(t, 1, stats.BySeverity[models.SeverityCritical])
	assert.Equal(t, 0, stats.BySeverity[models.SeverityMedium])
	assert.Equal(t, 1, stats.Acknowledged)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 3, stats.Active)
}

func TestCountSimilarRecent(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)

	// Within 5% of threshold 70 means current value in [66.5, 73.5].
	seedAlert(t, db, th, models.SeverityLow, 68)

	alerts := NewAlertRepository(db)
	since := time.Now().Add(-time.Hour)

	n, err := alerts.CountSimilarRecent(brandID, models.MetricOverallScore, 70, 3.5, since)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Outside the value tolerance.
	n, err = alerts.CountSimilarRecent(brandID, models.MetricOverallScore, 50, 2.5, since)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Different metric.
	n, err = alerts.CountSimilarRecent(brandID, models.MetricCitationCount, 70, 3.5, since)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Resolved alerts no longer suppress.
	existing, err := alerts.List(brandID, models.AlertFilter{})
	require.NoError(t, err)
	require.NoError(t, alerts.Resolve(existing[0].ID))

	n, err = alerts.CountSimilarRecent(brandID, models.MetricOverallScore, 70, 3.5, since)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCleanupResolved(t *testing.T) {
	db := newTestDB(t)
	userID, brandID := seedUserAndBrand(t, db)
	th := seedThreshold(t, db, brandID, userID)

	oldResolved := seedAlert(t, db, th, models.SeverityLow, 68)
	freshResolved := seedAlert(t, db, th, models.SeverityLow, 67)
	unresolved := seedAlert(t, db, th, models.SeverityHigh, 55)

	alerts := NewAlertRepository(db)

	// Backdate one resolution past the cutoff.
	old := time.Now().UTC().AddDate(0, 0, -40)
	_, err := db.Exec("UPDATE alerts SET resolved_at = ? WHERE id = ?", old, oldResolved.ID)
	require.NoError(t, err)
	require.NoError(t, alerts.Resolve(freshResolved.ID))

	deleted, err := alerts.CleanupResolved(time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = alerts.GetByID(oldResolved.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = alerts.GetByID(freshResolved.ID)
	assert.NoError(t, err)
	_, err = alerts.GetByID(unresolved.ID)
	assert.NoError(t, err)
}
