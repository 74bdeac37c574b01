// ABOUTME: Helpers shared by pace commands.
// ABOUTME: Time parsing, workout references, and output destinations.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/report"
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// resolveWorkout finds a workout by ID prefix, or the most recent one for
// "latest" or no argument.
func resolveWorkout(ctx context.Context, args []string) (models.Workout, error) {
	if len(args) == 0 || strings.EqualFold(args[0], "latest") {
		return svc.LatestWorkout(ctx, "")
	}
	return svc.FindWorkout(ctx, args[0])
}

// writeOutput renders into path, or to out when path is empty. Binary
// formats need a file.
func writeOutput(out io.Writer, path string, format report.Format, render func(io.Writer) error) error {
	if path == "" {
		if format.Binary() {
			return fmt.Errorf("%s output needs --output", format)
		}
		return render(out)
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	color.Green("✓ Wrote %s", path)
	return nil
}

func shortID(w models.Workout) string {
	return w.ID.String()[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
