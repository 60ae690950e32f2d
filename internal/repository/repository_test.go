package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/database"
	"github.com/brandpulse/alerts-backend-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedUserAndBrand inserts the user/brand pair most tests hang alerts off
func seedUserAndBrand(t *testing.T, db *sql.DB) (userID, brandID string) {
	t.Helper()
	users := NewUserRepository(db)

	phone := "+15550001111"
	require.NoError(t, users.UpsertUser(&models.User{
		ID:    "u-1",
		Email: "owner@example.com",
		Phone: &phone,
		Role:  "member",
	}))
	require.NoError(t, users.UpsertBrand(&models.Brand{
		ID:     "b-1",
		UserID: "u-1",
		Name:   "Acme",
	}))
	return "u-1", "b-1"
}

// seedThreshold inserts an active overall_score threshold for the brand
func seedThreshold(t *testing.T, db *sql.DB, brandID, userID string) *models.AlertThreshold {
	t.Helper()
	thresholds := NewThresholdRepository(db)

	th := &models.AlertThreshold{
		BrandID:        brandID,
		UserID:         userID,
		MetricType:     models.MetricOverallScore,
		ThresholdValue: 70,
		Operator:       models.OpLess,
		IsActive:       true,
		Channels:       []models.Channel{models.ChannelEmail, models.ChannelInApp},
	}
	require.NoError(t, thresholds.Create(th))
	return th
}

// seedAlert inserts one alert referencing the threshold
func seedAlert(t *testing.T, db *sql.DB, th *models.AlertThreshold, severity models.Severity, currentValue float64) *models.Alert {
	t.Helper()
	alerts := NewAlertRepository(db)

	a := &models.Alert{
		BrandID:          th.BrandID,
		AlertThresholdID: th.ID,
		Severity:         severity,
		Title:            "Overall Score Alert - " + models.SeverityLabel(severity),
		Message:          "Overall Score has dropped below threshold.",
		MetricType:       th.MetricType,
		CurrentValue:     currentValue,
		ThresholdValue:   th.ThresholdValue,
	}
	require.NoError(t, alerts.Create(a))
	return a
}
