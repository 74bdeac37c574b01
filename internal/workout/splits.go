// ABOUTME: Split calculation as a fold over time-ordered distance samples.
// ABOUTME: Excludes start-up drift and measurement gaps from split durations.
package workout

import (
	"math"
	"time"

	"github.com/harperreed/pace/internal/models"
)

const (
	// DefaultSplitDistance is one kilometer.
	DefaultSplitDistance = 1000.0
	// MileSplitDistance is one statute mile.
	MileSplitDistance = 1609.344
)

// splitTolerance is the relative slack used when comparing accumulated
// distance against the split distance.
const splitTolerance = 1e-9

// SplitState is the state carried from one distance sample to the next.
// Durations are in seconds.
type SplitState struct {
	AccumulatedMeters   float64
	AccumulatedDuration float64
	// GPSDrops is gap time inside the current split. It resets on every split.
	GPSDrops float64
	// IntervalStart is the logical start of the split being accumulated.
	IntervalStart time.Time

	// InitialDrift is the delay between the workout start and the first sample.
	InitialDrift float64
	// TotalGaps is all gap time seen so far.
	TotalGaps float64
	Samples   int
	Emitted   int

	previousEnd time.Time
}

// SplitCalculator turns distance samples into fixed-distance splits.
type SplitCalculator struct {
	workoutStart time.Time
	distance     float64
}

// NewSplitCalculator creates a calculator for a workout that started at
// workoutStart. A non-positive distance selects DefaultSplitDistance.
func NewSplitCalculator(workoutStart time.Time, distance float64) SplitCalculator {
	if distance <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		distance = DefaultSplitDistance
	}
	return SplitCalculator{workoutStart: workoutStart, distance: distance}
}

// Distance returns the split distance in meters.
func (c SplitCalculator) Distance() float64 {
	return c.distance
}

// Step folds one sample into s and returns the new state together with any
// splits the sample completed. A sample long enough to cover several split
// distances completes several splits.
func (c SplitCalculator) Step(s SplitState, sample models.DistanceSample) (SplitState, []models.SplitEvent) {
	if s.Samples == 0 {
		// Time before the first sample is positioning start-up, not motion.
		// Starting the split at the first sample excludes it.
		if !c.workoutStart.IsZero() {
			s.InitialDrift = math.Max(sample.StartedAt.Sub(c.workoutStart).Seconds(), 0)
		}
		s.IntervalStart = sample.StartedAt
	} else if gap := sample.StartedAt.Sub(s.previousEnd).Seconds(); gap > 0 {
		s.GPSDrops += gap
		s.TotalGaps += gap
	}

	s.Samples++
	s.previousEnd = sample.EndedAt
	s.AccumulatedDuration += sample.Duration().Seconds()
	s.AccumulatedMeters += sample.Meters

	var splits []models.SplitEvent
	for s.AccumulatedMeters >= c.distance*(1-splitTolerance) {
		s.AccumulatedDuration = sample.EndedAt.Sub(s.IntervalStart).Seconds() - s.GPSDrops

		pace := s.AccumulatedDuration / s.AccumulatedMeters
		remainder := math.Max(s.AccumulatedMeters-c.distance, 0)
		remainderDuration := remainder * pace
		duration := s.AccumulatedDuration - remainderDuration

		splits = append(splits, models.SplitEvent{
			Kind:            models.EventSegment,
			StartedAt:       s.IntervalStart,
			EndedAt:         s.IntervalStart.Add(seconds(duration)),
			DistanceMeters:  s.AccumulatedMeters - remainder,
			DurationSeconds: duration,
		})

		s.IntervalStart = sample.EndedAt.Add(-seconds(remainderDuration))
		s.AccumulatedMeters = remainder
		s.AccumulatedDuration = remainderDuration
		s.GPSDrops = 0
		s.Emitted++
	}

	return s, splits
}

// Trailing returns the split for whatever distance is left in s. It reports
// false when nothing was folded or the leftover distance is zero.
func (c SplitCalculator) Trailing(s SplitState) (models.SplitEvent, bool) {
	if s.Samples == 0 || s.AccumulatedMeters <= c.distance*splitTolerance {
		return models.SplitEvent{}, false
	}
	return models.SplitEvent{
		Kind:            models.EventSegment,
		StartedAt:       s.IntervalStart,
		EndedAt:         s.IntervalStart.Add(seconds(s.AccumulatedDuration)),
		DistanceMeters:  s.AccumulatedMeters,
		DurationSeconds: s.AccumulatedDuration,
	}, true
}

// Fold runs every sample through Step and appends the trailing split.
// Samples must already be sorted by start time.
func (c SplitCalculator) Fold(samples []models.DistanceSample) (SplitState, []models.SplitEvent) {
	var state SplitState
	splits := []models.SplitEvent{}
	for _, sample := range samples {
		var completed []models.SplitEvent
		state, completed = c.Step(state, sample)
		splits = append(splits, completed...)
	}
	if trailing, ok := c.Trailing(state); ok {
		splits = append(splits, trailing)
	}
	return state, splits
}

// CalculateSplits returns the splits for samples of a workout that started at
// workoutStart. Empty input yields an empty, non-nil slice.
func CalculateSplits(samples []models.DistanceSample, workoutStart time.Time, distance float64) []models.SplitEvent {
	_, splits := NewSplitCalculator(workoutStart, distance).Fold(samples)
	return splits
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
