// ABOUTME: MCP tool implementations for workouts.
// ABOUTME: Lists workouts and returns details, calculated splits, and recorded paces.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/report"
	"github.com/harperreed/pace/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, optionally filtered by activity kind",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout_detail",
		Description: "Get a workout with its route locations and heart rate samples",
	}, s.handleGetWorkoutDetail)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_splits",
		Description: "Calculate fixed-distance splits for a workout from its distance samples",
	}, s.handleGetSplits)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_prerecorded_paces",
		Description: "Get the splits the recording device stored with a workout",
	}, s.handleGetPrerecordedPaces)
}

// Tool input/output types

type listWorkoutsInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by activity kind (running, walking, cycling, hiking, swimming, other)"`
	Since string `json:"since,omitempty" jsonschema:"Only workouts overlapping this time or later (RFC 3339 or YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type workoutSummary struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	StartedAt       string  `json:"started_at"`
	EndedAt         string  `json:"ended_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	Source          string  `json:"source,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	RecordedSplits  int     `json:"recorded_splits"`
}

type getWorkoutDetailInput struct {
	ID             string `json:"id" jsonschema:"Workout ID or prefix"`
	IncludeSamples bool   `json:"include_samples,omitempty" jsonschema:"Return every location and heart rate sample instead of a summary"`
}

type detailSummary struct {
	Workout      workoutSummary        `json:"workout"`
	Locations    int                   `json:"locations"`
	FirstFix     *models.LocationPoint `json:"first_fix,omitempty"`
	LastFix      *models.LocationPoint `json:"last_fix,omitempty"`
	HeartRate    int                   `json:"heart_rate_samples"`
	HeartRateMin float64               `json:"heart_rate_min,omitempty"`
	HeartRateAvg float64               `json:"heart_rate_avg,omitempty"`
	HeartRateMax float64               `json:"heart_rate_max,omitempty"`
}

type getSplitsInput struct {
	ID       string  `json:"id" jsonschema:"Workout ID or prefix"`
	Distance float64 `json:"distance,omitempty" jsonschema:"Split distance in meters (default from config, usually 1000)"`
	Unit     string  `json:"unit,omitempty" jsonschema:"Pace display unit: km or mi (default km)"`
}

type getPacesInput struct {
	ID   string `json:"id" jsonschema:"Workout ID or prefix"`
	Unit string `json:"unit,omitempty" jsonschema:"Pace display unit: km or mi (default km)"`
}

type splitsOutput struct {
	WorkoutID     string            `json:"workout_id"`
	Source        string            `json:"source"`
	SplitDistance float64           `json:"split_distance,omitempty"`
	Splits        []report.SplitRow `json:"splits"`
	Message       string            `json:"message,omitempty"`
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := workout.ListFilter{Limit: input.Limit}
	if input.Kind != "" {
		kind, ok := models.ParseActivityKind(input.Kind)
		if !ok {
			return nil, nil, fmt.Errorf("unknown activity kind: %s", input.Kind)
		}
		filter.Kind = kind
	}
	if input.Since != "" {
		since, err := parseTime(input.Since)
		if err != nil {
			return nil, nil, err
		}
		filter.Since = since
	}

	workouts, err := s.svc.ListWorkouts(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}

	out := make([]workoutSummary, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, summarize(w))
	}
	return nil, out, nil
}

func (s *Server) handleGetWorkoutDetail(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutDetailInput) (*mcp.CallToolResult, any, error) {
	w, err := s.svc.FindWorkout(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("workout not found: %w", err)
	}

	detail, err := s.svc.GetWorkoutDetail(ctx, w)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workout detail: %w", err)
	}

	if input.IncludeSamples {
		return nil, detail, nil
	}

	hr := report.SummarizeHeartRate(detail.HeartRate)
	out := detailSummary{
		Workout:      summarize(w),
		Locations:    len(detail.Locations),
		HeartRate:    hr.Count,
		HeartRateMin: hr.Min,
		HeartRateAvg: hr.Avg,
		HeartRateMax: hr.Max,
	}
	if n := len(detail.Locations); n > 0 {
		out.FirstFix = &detail.Locations[0]
		out.LastFix = &detail.Locations[n-1]
	}
	return nil, out, nil
}

func (s *Server) handleGetSplits(ctx context.Context, req *mcp.CallToolRequest, input getSplitsInput) (*mcp.CallToolResult, splitsOutput, error) {
	unit, err := report.ParseUnit(input.Unit)
	if err != nil {
		return nil, splitsOutput{}, err
	}
	if input.Distance < 0 {
		return nil, splitsOutput{}, fmt.Errorf("distance must be positive, got %v", input.Distance)
	}

	w, err := s.svc.FindWorkout(ctx, input.ID)
	if err != nil {
		return nil, splitsOutput{}, fmt.Errorf("workout not found: %w", err)
	}

	distance := input.Distance
	if distance == 0 {
		distance = s.svc.SplitDistance()
	}
	splits, err := s.svc.GetSplits(ctx, w, distance)
	if err != nil {
		return nil, splitsOutput{}, fmt.Errorf("failed to calculate splits: %w", err)
	}

	out := splitsOutput{
		WorkoutID:     w.ID.String(),
		Source:        string(workout.PaceSourceCalculated),
		SplitDistance: distance,
		Splits:        report.Rows(splits, unit),
	}
	if len(splits) == 0 {
		out.Message = "Workout has no distance samples."
	}
	return nil, out, nil
}

func (s *Server) handleGetPrerecordedPaces(ctx context.Context, req *mcp.CallToolRequest, input getPacesInput) (*mcp.CallToolResult, splitsOutput, error) {
	unit, err := report.ParseUnit(input.Unit)
	if err != nil {
		return nil, splitsOutput{}, err
	}

	w, err := s.svc.FindWorkout(ctx, input.ID)
	if err != nil {
		return nil, splitsOutput{}, fmt.Errorf("workout not found: %w", err)
	}

	splits := s.svc.GetPrerecordedPaces(w)
	out := splitsOutput{
		WorkoutID: w.ID.String(),
		Source:    string(workout.PaceSourceRecorded),
		Splits:    report.Rows(splits, unit),
	}
	if len(splits) == 0 {
		out.Message = "The recording device stored no splits; use get_splits to calculate them."
	}
	return nil, out, nil
}

func summarize(w models.Workout) workoutSummary {
	out := workoutSummary{
		ID:              w.ID.String(),
		Kind:            string(w.Kind),
		StartedAt:       w.StartedAt.Format(time.RFC3339),
		EndedAt:         w.EndedAt.Format(time.RFC3339),
		DurationSeconds: w.Duration().Seconds(),
		RecordedSplits:  len(workout.PrerecordedSplits(w)),
	}
	if w.Source != nil {
		out.Source = *w.Source
	}
	if w.Notes != nil {
		out.Notes = *w.Notes
	}
	return out
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", raw)
	}
	return t, nil
}
