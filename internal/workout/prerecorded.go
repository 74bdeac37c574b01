// ABOUTME: Splits the recording device stored with the workout itself.
// ABOUTME: Used in preference to calculated splits when present.
package workout

import (
	"github.com/harperreed/pace/internal/models"
)

// PrerecordedSplits returns w's segment events as splits, in recorded order.
// It never fails; a workout without segments yields an empty slice.
func PrerecordedSplits(w models.Workout) []models.SplitEvent {
	splits := []models.SplitEvent{}
	for _, ev := range w.Events {
		if ev.Kind == models.EventSegment {
			splits = append(splits, models.SplitFromEvent(ev))
		}
	}
	return splits
}
