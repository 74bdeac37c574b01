// ABOUTME: HeartRateFetcher reads the heart rate track covering a workout.
// ABOUTME: One range query, ascending by end time, no limit.
package workout

import (
	"context"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
)

// HeartRateFetcher retrieves heart rate samples for a workout's time range.
type HeartRateFetcher struct {
	src      query.Source
	observer Observer
}

// NewHeartRateFetcher creates a HeartRateFetcher reading from src.
func NewHeartRateFetcher(src query.Source, observer Observer) *HeartRateFetcher {
	if observer == nil {
		observer = NopObserver{}
	}
	return &HeartRateFetcher{src: src, observer: observer}
}

// Fetch returns all heart rate samples within w's time range, ascending by
// end time. No samples is an empty slice, not an error.
func (f *HeartRateFetcher) Fetch(ctx context.Context, w models.Workout) ([]models.HeartRateSample, error) {
	samples, err := query.Collect(func(deliver query.DeliverFunc[models.HeartRateSample]) error {
		return f.src.QueryHeartRate(ctx, query.ForRange(query.KindHeartRate, w.StartedAt, w.EndedAt), deliver)
	})
	if err != nil {
		return nil, query.UpstreamFailed("heart rate", err)
	}
	f.observer.Observe(EventHeartRateReady, "workout", w.ID, "samples", len(samples))
	return samples, nil
}
