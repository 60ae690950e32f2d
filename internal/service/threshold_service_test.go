package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

func validThreshold() *models.AlertThreshold {
	return &models.AlertThreshold{
		BrandID:        "b-1",
		UserID:         "u-1",
		MetricType:     models.MetricAverageSentiment,
		ThresholdValue: 40,
		Operator:       models.OpLessEqual,
		Channels:       []models.Channel{models.ChannelEmail},
	}
}

func TestThresholdCreateValidation(t *testing.T) {
	f := newAlertFixture(t)
	svc := NewThresholdService(f.thresholds, f.users)

	th := validThreshold()
	th.MetricType = "click_through_rate"
	assert.ErrorIs(t, svc.Create(th), models.ErrUnknownMetricType)

	th = validThreshold()
	th.Operator = "!="
	assert.ErrorIs(t, svc.Create(th), models.ErrUnknownOperator)

	th = validThreshold()
	th.Channels = []models.Channel{"pager"}
	assert.Error(t, svc.Create(th))

	th = validThreshold()
	th.BrandID = "b-ghost"
	assert.ErrorIs(t, svc.Create(th), models.ErrNotFound)

	th = validThreshold()
	th.IsActive = false
	require.NoError(t, svc.Create(th))
	assert.True(t, th.IsActive, "create always activates the threshold")
}

func TestThresholdUpdateValidation(t *testing.T) {
	f := newAlertFixture(t)
	svc := NewThresholdService(f.thresholds, f.users)

	th := validThreshold()
	require.NoError(t, svc.Create(th))

	th.Operator = "between"
	assert.ErrorIs(t, svc.Update(th), models.ErrUnknownOperator)

	th.Operator = models.OpGreater
	require.NoError(t, svc.Update(th))

	got, err := svc.Get(th.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpGreater, got.Operator)
}
