// ABOUTME: MCP resource implementations for workouts.
// ABOUTME: Provides pace://recent with the latest workouts and their split counts.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/pace/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const recentURI = "pace://recent"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Workouts",
		Description: "Last 10 workouts with duration and recorded split counts",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.svc.ListWorkouts(ctx, workout.ListFilter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	summaries := make([]workoutSummary, 0, len(workouts))
	for _, w := range workouts {
		summaries = append(summaries, summarize(w))
	}

	result := map[string]any{
		"workouts":      summaries,
		"count":         len(summaries),
		"split_default": s.svc.SplitDistance(),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      recentURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
