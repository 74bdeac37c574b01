// ABOUTME: Tests for the split fold: drift, gaps, remainder carry, and trailing splits.
// ABOUTME: Includes randomized distance conservation and split count checks.
package workout

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds a distance sample from second offsets relative to t0.
func sample(startSec, endSec, meters float64) models.DistanceSample {
	return models.DistanceSample{
		StartedAt: t0.Add(seconds(startSec)),
		EndedAt:   t0.Add(seconds(endSec)),
		Meters:    meters,
	}
}

func offset(ts time.Time) float64 {
	return ts.Sub(t0).Seconds()
}

func totalMeters(splits []models.SplitEvent) float64 {
	sum := 0.0
	for _, s := range splits {
		sum += s.DistanceMeters
	}
	return sum
}

func TestSplitsDriftScenario(t *testing.T) {
	samples := []models.DistanceSample{
		sample(5, 35, 200),
		sample(35, 95, 850),
	}

	state, splits := NewSplitCalculator(t0, 1000).Fold(samples)
	require.Len(t, splits, 2)

	// 90s of motion over 1050m; the last 50m are carried at the same pace.
	pace := 90.0 / 1050.0
	first := splits[0]
	assert.Equal(t, models.EventSegment, first.Kind)
	assert.InDelta(t, 1000, first.DistanceMeters, 1e-9)
	assert.InDelta(t, 90-50*pace, first.DurationSeconds, 1e-9)
	assert.InDelta(t, 5, offset(first.StartedAt), 1e-9)
	assert.InDelta(t, 5+90-50*pace, offset(first.EndedAt), 1e-6)

	trailing := splits[1]
	assert.InDelta(t, 50, trailing.DistanceMeters, 1e-9)
	assert.InDelta(t, 50*pace, trailing.DurationSeconds, 1e-9)
	assert.InDelta(t, 95-50*pace, offset(trailing.StartedAt), 1e-6)
	assert.InDelta(t, 95, offset(trailing.EndedAt), 1e-6)

	assert.InDelta(t, 5, state.InitialDrift, 1e-9)
	assert.Equal(t, 1, state.Emitted)
}

func TestSplitsEmptyInput(t *testing.T) {
	splits := CalculateSplits(nil, t0, 1000)
	require.NotNil(t, splits)
	assert.Empty(t, splits)
}

func TestSplitsGapExclusion(t *testing.T) {
	samples := []models.DistanceSample{
		sample(0, 60, 500),
		// 30s of lost signal between 60s and 90s.
		sample(90, 150, 500),
	}

	state, splits := NewSplitCalculator(t0, 1000).Fold(samples)
	require.Len(t, splits, 1, "an exact multiple leaves no trailing split")
	assert.InDelta(t, 120, splits[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 0.12, splits[0].Pace(), 1e-12)
	assert.InDelta(t, 30, state.TotalGaps, 1e-9)
	assert.Zero(t, state.GPSDrops, "gap time resets after a split")
}

func TestSplitsGapLaterInWorkout(t *testing.T) {
	samples := []models.DistanceSample{
		sample(0, 100, 400),
		sample(100, 200, 400),
		sample(260, 360, 400),
	}

	splits := CalculateSplits(samples, t0, 1000)
	require.Len(t, splits, 2)

	// 300s of motion for 1200m; the 60s gap is not counted.
	pace := 300.0 / 1200.0
	assert.InDelta(t, 1000*pace, splits[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 200, splits[1].DistanceMeters, 1e-9)
	assert.InDelta(t, 200*pace, splits[1].DurationSeconds, 1e-9)
}

func TestSplitsGapOnlyCountsTowardCurrentSplit(t *testing.T) {
	samples := []models.DistanceSample{
		sample(0, 100, 1000),
		sample(160, 260, 500),
	}

	splits := CalculateSplits(samples, t0, 1000)
	require.Len(t, splits, 2)
	assert.InDelta(t, 100, splits[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 500, splits[1].DistanceMeters, 1e-9)
	assert.InDelta(t, 100, splits[1].DurationSeconds, 1e-9)
	assert.InDelta(t, 100, offset(splits[1].StartedAt), 1e-6, "the split interval runs from the previous split end")
}

func TestSplitsOneSampleCoversSeveralSplits(t *testing.T) {
	splits := CalculateSplits([]models.DistanceSample{sample(0, 600, 2500)}, t0, 1000)

	require.Len(t, splits, 3)
	assert.InDelta(t, 1000, splits[0].DistanceMeters, 1e-9)
	assert.InDelta(t, 240, splits[0].DurationSeconds, 1e-9)
	assert.InDelta(t, 1000, splits[1].DistanceMeters, 1e-9)
	assert.InDelta(t, 240, splits[1].DurationSeconds, 1e-9)
	assert.InDelta(t, 240, offset(splits[1].StartedAt), 1e-6)
	assert.InDelta(t, 500, splits[2].DistanceMeters, 1e-9)
	assert.InDelta(t, 120, splits[2].DurationSeconds, 1e-9)
	assert.InDelta(t, 480, offset(splits[2].StartedAt), 1e-6)
}

func TestSplitsExactMultipleHasNoTrailingSplit(t *testing.T) {
	samples := []models.DistanceSample{
		sample(0, 200, 1000),
		sample(200, 400, 1000),
	}
	splits := CalculateSplits(samples, t0, 1000)
	require.Len(t, splits, 2)
	for _, s := range splits {
		assert.InDelta(t, 1000, s.DistanceMeters, 1e-9)
		assert.InDelta(t, 200, s.DurationSeconds, 1e-9)
	}
}

func TestSplitsShortWorkoutOnlyTrailing(t *testing.T) {
	splits := CalculateSplits([]models.DistanceSample{sample(0, 60, 180), sample(60, 120, 170)}, t0, 1000)
	require.Len(t, splits, 1)
	assert.InDelta(t, 350, splits[0].DistanceMeters, 1e-9)
	assert.InDelta(t, 120, splits[0].DurationSeconds, 1e-9)
}

func TestSplitsStationaryWorkoutHasNoSplits(t *testing.T) {
	splits := CalculateSplits([]models.DistanceSample{sample(0, 60, 0), sample(60, 120, 0)}, t0, 1000)
	assert.Empty(t, splits)
}

func TestSplitsSampleBeforeWorkoutStart(t *testing.T) {
	state, splits := NewSplitCalculator(t0.Add(10*time.Second), 1000).Fold([]models.DistanceSample{sample(0, 60, 300)})
	require.Len(t, splits, 1)
	assert.Zero(t, state.InitialDrift)
	assert.InDelta(t, 0, offset(splits[0].StartedAt), 1e-9)
}

func TestSplitsMileDistance(t *testing.T) {
	samples := []models.DistanceSample{sample(0, 400, 1000), sample(400, 800, 1000)}
	splits := CalculateSplits(samples, t0, MileSplitDistance)
	require.Len(t, splits, 2)
	assert.InDelta(t, MileSplitDistance, splits[0].DistanceMeters, 1e-9)
	assert.InDelta(t, 2000-MileSplitDistance, splits[1].DistanceMeters, 1e-9)
	assert.InDelta(t, 0.4, splits[0].Pace(), 1e-12)
}

func TestNewSplitCalculatorDefaults(t *testing.T) {
	for _, d := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		assert.Equal(t, DefaultSplitDistance, NewSplitCalculator(t0, d).Distance())
	}
	assert.Equal(t, 400.0, NewSplitCalculator(t0, 400).Distance())
}

func TestSplitStepDoesNotMutateInput(t *testing.T) {
	calc := NewSplitCalculator(t0, 1000)
	before, _ := calc.Step(SplitState{}, sample(0, 60, 300))
	snapshot := before

	after, splits := calc.Step(before, sample(60, 300, 900))

	assert.Equal(t, snapshot, before)
	require.Len(t, splits, 1)
	assert.InDelta(t, 200, after.AccumulatedMeters, 1e-9)
	assert.Equal(t, 2, after.Samples)
}

func TestSplitsRandomizedProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		splitDistance := []float64{400, 1000, MileSplitDistance}[rng.Intn(3)]

		var samples []models.DistanceSample
		cursor := float64(rng.Intn(20))
		total := 0.0
		withGaps := rng.Intn(2) == 0
		n := 1 + rng.Intn(60)
		for i := 0; i < n; i++ {
			if withGaps && rng.Intn(5) == 0 {
				cursor += float64(1 + rng.Intn(40))
			}
			dur := float64(1 + rng.Intn(30))
			meters := rng.Float64() * 180
			samples = append(samples, sample(cursor, cursor+dur, meters))
			cursor += dur
			total += meters
		}

		splits := CalculateSplits(samples, t0, splitDistance)

		assert.InDelta(t, total, totalMeters(splits), 1e-6*math.Max(total, 1), "iteration %d conservation", iter)
		assert.GreaterOrEqual(t, len(splits), int(math.Floor(total/splitDistance*(1-1e-9))), "iteration %d count", iter)

		for i, s := range splits {
			if i < len(splits)-1 {
				assert.InDelta(t, splitDistance, s.DistanceMeters, 1e-5, "iteration %d split %d distance", iter, i)
			} else {
				assert.LessOrEqual(t, s.DistanceMeters, splitDistance*(1+1e-9))
			}
			assert.GreaterOrEqual(t, s.DurationSeconds, -1e-9)
		}

		if !withGaps {
			// Without gaps, splits tile the sampled time exactly.
			for i := 1; i < len(splits); i++ {
				assert.InDelta(t, 0, splits[i].StartedAt.Sub(splits[i-1].EndedAt).Seconds(), 1e-6,
					"iteration %d splits %d/%d not contiguous", iter, i-1, i)
			}
			sumDur := 0.0
			for _, s := range splits {
				sumDur += s.DurationSeconds
			}
			sampled := samples[len(samples)-1].EndedAt.Sub(samples[0].StartedAt).Seconds()
			if totalMeters(splits) > 0 && len(splits) > 0 {
				assert.InDelta(t, sampled, sumDur, 1e-6, "iteration %d duration", iter)
			}
		}
	}
}
