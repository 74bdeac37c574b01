// ABOUTME: GPX track import using gpxgo.
// ABOUTME: Each track segment becomes a route; point-to-point distances become samples.
package importer

import (
	"fmt"
	"strings"

	"github.com/harperreed/pace/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
)

// ParseGPX converts a GPX document into an Activity. Points without a
// timestamp are skipped. Distance is not carried across segment breaks, so
// the time between segments shows up as a gap.
func ParseGPX(data []byte, kind models.ActivityKind) (*Activity, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, err
	}

	var (
		segments [][]models.LocationPoint
		distance []models.DistanceSample
		name     string
		fileKind models.ActivityKind
	)

	for _, track := range g.Tracks {
		if name == "" {
			name = strings.TrimSpace(track.Name)
		}
		if k, ok := models.ParseActivityKind(track.Type); ok && fileKind == "" {
			fileKind = k
		}

		for _, segment := range track.Segments {
			var points []models.LocationPoint
			var prev *gpx.GPXPoint
			// Distance covered between points sharing a timestamp rides on
			// the next sample that spans time.
			var pending float64
			for i := range segment.Points {
				p := segment.Points[i]
				if p.Timestamp.IsZero() {
					continue
				}
				points = append(points, locationFromGPX(p))

				if prev != nil {
					pending += prev.Distance2D(&p)
					if p.Timestamp.After(prev.Timestamp) {
						distance = append(distance, models.DistanceSample{
							StartedAt: prev.Timestamp.UTC(),
							EndedAt:   p.Timestamp.UTC(),
							Meters:    pending,
						})
						pending = 0
					}
				}
				prev = &segment.Points[i]
			}
			if len(points) > 0 {
				segments = append(segments, points)
			}
		}
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoTrackPoints, describeGPX(g))
	}

	if kind == "" {
		kind = fileKind
	}
	if kind == "" {
		kind = models.ActivityOther
	}

	last := segments[len(segments)-1]
	w := models.NewWorkout(kind, segments[0][0].Timestamp, last[len(last)-1].Timestamp).WithSource("gpx")
	if name == "" {
		name = strings.TrimSpace(g.Name)
	}
	if name != "" {
		w = w.WithNotes(name)
	}

	activity := &Activity{}
	activity.Record.Workout = *w
	activity.Record.Distance = distance
	for _, points := range segments {
		activity.Record.Routes = append(activity.Record.Routes, routeRecord(*w, points))
	}
	return activity, nil
}

func locationFromGPX(p gpx.GPXPoint) models.LocationPoint {
	loc := models.LocationPoint{
		Timestamp: p.Timestamp.UTC(),
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
	if p.Elevation.NotNull() {
		alt := p.Elevation.Value()
		loc.Altitude = &alt
	}
	return loc
}

func describeGPX(g *gpx.GPX) string {
	return fmt.Sprintf("%d tracks, %d routes, %d waypoints", len(g.Tracks), len(g.Routes), len(g.Waypoints))
}
