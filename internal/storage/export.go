// ABOUTME: Export and import of the full activity store contents.
// ABOUTME: Works over any query.Source and Writer, in JSON or YAML.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current backup format version.
const ExportVersion = "1.0"

// ExportData represents the full export format for activity data.
type ExportData struct {
	Version    string                   `json:"version" yaml:"version"`
	ExportedAt time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool       string                   `json:"tool" yaml:"tool"`
	Workouts   []WorkoutRecord          `json:"workouts" yaml:"workouts"`
	HeartRate  []models.HeartRateSample `json:"heart_rate" yaml:"heart_rate"`
}

// WorkoutRecord is a workout with the samples and routes it owns.
type WorkoutRecord struct {
	Workout  models.Workout          `json:"workout" yaml:"workout"`
	Distance []models.DistanceSample `json:"distance" yaml:"distance"`
	Routes   []RouteRecord           `json:"routes" yaml:"routes"`
}

// RouteRecord is a route with its location points.
type RouteRecord struct {
	Route  models.Route           `json:"route" yaml:"route"`
	Points []models.LocationPoint `json:"points" yaml:"points"`
}

// Dump reads everything from src into an ExportData.
func Dump(ctx context.Context, src query.Source) (*ExportData, error) {
	workouts, err := query.Collect(func(deliver query.DeliverFunc[models.Workout]) error {
		return src.QueryWorkouts(ctx, query.Query{Kind: query.KindWorkout, Sort: query.Sort{Field: query.SortStart}}, deliver)
	})
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "pace",
		Workouts:   make([]WorkoutRecord, 0, len(workouts)),
	}

	for _, w := range workouts {
		record := WorkoutRecord{Workout: w}

		record.Distance, err = query.Collect(func(deliver query.DeliverFunc[models.DistanceSample]) error {
			return src.QueryDistance(ctx, query.ForWorkout(query.KindDistance, w.ID), deliver)
		})
		if err != nil {
			return nil, fmt.Errorf("list distance samples for %s: %w", w.ID, err)
		}

		routes, err := query.Collect(func(deliver query.DeliverFunc[models.Route]) error {
			return src.QueryRoutes(ctx, query.ForWorkout(query.KindRoute, w.ID), deliver)
		})
		if err != nil {
			return nil, fmt.Errorf("list routes for %s: %w", w.ID, err)
		}

		for _, r := range routes {
			q := query.Query{Kind: query.KindLocation, Predicate: query.Predicate{RouteID: r.ID}, Sort: query.Sort{Field: query.SortStart}}
			points, err := query.Collect(func(deliver query.DeliverFunc[models.LocationPoint]) error {
				return src.QueryLocations(ctx, q, deliver)
			})
			if err != nil {
				return nil, fmt.Errorf("list route points for %s: %w", r.ID, err)
			}
			record.Routes = append(record.Routes, RouteRecord{Route: r, Points: points})
		}

		data.Workouts = append(data.Workouts, record)
	}

	data.HeartRate, err = query.Collect(func(deliver query.DeliverFunc[models.HeartRateSample]) error {
		return src.QueryHeartRate(ctx, query.Query{Kind: query.KindHeartRate, Sort: query.Sort{Field: query.SortEnd}}, deliver)
	})
	if err != nil {
		return nil, fmt.Errorf("list heart rate samples: %w", err)
	}

	return data, nil
}

// ImportSummary holds counts of imported entities.
type ImportSummary struct {
	Workouts  int
	Distance  int
	Routes    int
	Points    int
	HeartRate int
}

// Load writes data into dst. The destination should not already hold the
// same workouts; duplicate IDs fail.
func Load(ctx context.Context, dst Writer, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}

	for _, record := range data.Workouts {
		w := record.Workout
		if err := dst.CreateWorkout(ctx, &w); err != nil {
			return summary, fmt.Errorf("import workout %s: %w", w.ID, err)
		}
		summary.Workouts++

		if err := dst.AddDistanceSamples(ctx, w.ID, record.Distance); err != nil {
			return summary, fmt.Errorf("import distance samples for %s: %w", w.ID, err)
		}
		summary.Distance += len(record.Distance)

		for _, rr := range record.Routes {
			route := rr.Route
			route.WorkoutID = w.ID
			if err := dst.AddRoute(ctx, &route, rr.Points); err != nil {
				return summary, fmt.Errorf("import route %s: %w", route.ID, err)
			}
			summary.Routes++
			summary.Points += len(rr.Points)
		}
	}

	if err := dst.AddHeartRateSamples(ctx, data.HeartRate); err != nil {
		return summary, fmt.Errorf("import heart rate samples: %w", err)
	}
	summary.HeartRate = len(data.HeartRate)

	return summary, nil
}

// ExportJSON dumps src as indented JSON.
func ExportJSON(ctx context.Context, src query.Source) ([]byte, error) {
	data, err := Dump(ctx, src)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML dumps src as YAML.
func ExportYAML(ctx context.Context, src query.Source) ([]byte, error) {
	data, err := Dump(ctx, src)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(data)
}

// ParseExport decodes a JSON backup produced by ExportJSON.
func ParseExport(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if data.Version == "" {
		return nil, fmt.Errorf("parse export: missing version")
	}
	return &data, nil
}
