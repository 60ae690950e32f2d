package evaluator

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// RecentAlertFinder is the slice of the alert store the suppressor needs:
// count unresolved alerts for a brand+metric created since a cutoff whose
// current value lies within tolerance of the given threshold value.
type RecentAlertFinder interface {
	CountSimilarRecent(brandID string, metric models.MetricType, thresholdValue, tolerance float64, since time.Time) (int, error)
}

// Suppressor drops newly triggered evaluations that duplicate a recent
// alert. It also hands out per-key locks so the check-then-create sequence
// in the alert service is not racy across parallel workers.
type Suppressor struct {
	finder    RecentAlertFinder
	window    time.Duration
	tolerance float64 // fraction of threshold_value, e.g. 0.05

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSuppressor creates a suppressor with the given lookback window and
// value tolerance (fraction of the threshold value).
func NewSuppressor(finder RecentAlertFinder, window time.Duration, tolerance float64) *Suppressor {
	return &Suppressor{
		finder:    finder,
		window:    window,
		tolerance: tolerance,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Guard locks the suppression key for (brand, metric, value bucket) and
// returns the unlock function. Callers hold the lock across the
// IsDuplicate check and the alert insert.
func (s *Suppressor) Guard(brandID string, metric models.MetricType, thresholdValue float64) func() {
	key := s.key(brandID, metric, thresholdValue)

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// IsDuplicate reports whether an unresolved alert for the same brand and
// metric, with a current value within tolerance of thresholdValue, was
// created inside the lookback window. Query failures fail open: a real
// alert is worth more than a duplicate costs, so infra errors are logged
// and treated as "not a duplicate".
func (s *Suppressor) IsDuplicate(brandID string, metric models.MetricType, thresholdValue float64) bool {
	tolerance := math.Abs(thresholdValue) * s.tolerance
	since := time.Now().Add(-s.window)

	n, err := s.finder.CountSimilarRecent(brandID, metric, thresholdValue, tolerance, since)
	if err != nil {
		log.Printf("Suppression check failed for brand %s metric %s: %v (failing open)", brandID, metric, err)
		return false
	}
	return n > 0
}

// key buckets the threshold value so nearby values share one lock
func (s *Suppressor) key(brandID string, metric models.MetricType, value float64) string {
	bucket := 0.0
	step := math.Abs(value) * s.tolerance
	if step > 0 {
		bucket = math.Floor(value / step)
	}
	return fmt.Sprintf("%s:%s:%.0f", brandID, metric, bucket)
}
