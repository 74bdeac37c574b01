// ABOUTME: Renders splits and workout details for the terminal and for files.
// ABOUTME: Supports plain text, markdown tables, JSON, YAML, and parquet.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatParquet  Format = "parquet"
)

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, markdown, json, yaml, or parquet)", s)
	}
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatParquet
}

// Unit is the distance unit paces are shown in.
type Unit string

const (
	UnitKilometer Unit = "km"
	UnitMile      Unit = "mi"
)

// ParseUnit accepts km or mi.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "km", "k", "kilometer", "kilometers":
		return UnitKilometer, nil
	case "mi", "mile", "miles":
		return UnitMile, nil
	default:
		return "", fmt.Errorf("unknown unit %q (expected km or mi)", s)
	}
}

// Meters is the length of one unit.
func (u Unit) Meters() float64 {
	if u == UnitMile {
		return 1609.344
	}
	return 1000
}

// FormatPace renders seconds per meter as minutes:seconds per unit.
func FormatPace(secondsPerMeter float64, unit Unit) string {
	if secondsPerMeter <= 0 || math.IsNaN(secondsPerMeter) || math.IsInf(secondsPerMeter, 0) {
		return "--:--"
	}
	return FormatDuration(secondsPerMeter*unit.Meters()) + "/" + string(unit)
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDistance renders meters in the given unit.
func FormatDistance(meters float64, unit Unit) string {
	return fmt.Sprintf("%.2f %s", meters/unit.Meters(), unit)
}

// SplitRow is the flattened form of a split used by tabular outputs.
type SplitRow struct {
	Index           int       `json:"index" yaml:"index"`
	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	EndedAt         time.Time `json:"ended_at" yaml:"ended_at"`
	DistanceMeters  float64   `json:"distance_meters" yaml:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds" yaml:"duration_seconds"`
	Pace            string    `json:"pace" yaml:"pace"`
}

// Rows flattens splits for display in unit.
func Rows(splits []models.SplitEvent, unit Unit) []SplitRow {
	rows := make([]SplitRow, 0, len(splits))
	for i, s := range splits {
		rows = append(rows, SplitRow{
			Index:           i + 1,
			StartedAt:       s.StartedAt,
			EndedAt:         s.EndedAt,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
			Pace:            FormatPace(s.Pace(), unit),
		})
	}
	return rows
}

// WriteSplits renders splits to out.
func WriteSplits(out io.Writer, format Format, splits []models.SplitEvent, unit Unit) error {
	switch format {
	case FormatText:
		return writeSplitsText(out, splits, unit)
	case FormatMarkdown:
		return writeSplitsMarkdown(out, splits, unit)
	case FormatJSON:
		return writeJSON(out, Rows(splits, unit))
	case FormatYAML:
		return yaml.NewEncoder(out).Encode(Rows(splits, unit))
	case FormatParquet:
		data, err := SplitsParquet(splits)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeSplitsText(out io.Writer, splits []models.SplitEvent, unit Unit) error {
	if len(splits) == 0 {
		_, err := fmt.Fprintln(out, "No splits.")
		return err
	}

	faint := color.New(color.Faint)
	bold := color.New(color.Bold)
	totalMeters, totalSeconds := 0.0, 0.0
	for i, s := range splits {
		totalMeters += s.DistanceMeters
		totalSeconds += s.DurationSeconds
		if _, err := fmt.Fprintf(out, "%s %s %s %s\n",
			faint.Sprintf("%3d", i+1),
			padRight(FormatDistance(s.DistanceMeters, unit), 10),
			padRight(FormatDuration(s.DurationSeconds), 8),
			bold.Sprint(FormatPace(s.Pace(), unit)),
		); err != nil {
			return err
		}
	}

	avg := 0.0
	if totalMeters > 0 {
		avg = totalSeconds / totalMeters
	}
	_, err := fmt.Fprintf(out, "%s %s %s %s\n",
		faint.Sprint("  ="),
		padRight(FormatDistance(totalMeters, unit), 10),
		padRight(FormatDuration(totalSeconds), 8),
		FormatPace(avg, unit),
	)
	return err
}

func writeSplitsMarkdown(out io.Writer, splits []models.SplitEvent, unit Unit) error {
	var sb strings.Builder
	sb.WriteString("| # | Start | Distance | Time | Pace |\n")
	sb.WriteString("|---|-------|----------|------|------|\n")
	for _, r := range Rows(splits, unit) {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			r.Index,
			r.StartedAt.Local().Format("15:04:05"),
			FormatDistance(r.DistanceMeters, unit),
			FormatDuration(r.DurationSeconds),
			r.Pace)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}

// WriteDetail renders a workout detail. Text and markdown show a summary;
// the structured formats carry every sample.
func WriteDetail(out io.Writer, format Format, detail *models.WorkoutDetail) error {
	switch format {
	case FormatText, FormatMarkdown:
		return writeDetailSummary(out, format, detail)
	case FormatJSON:
		return writeJSON(out, detail)
	case FormatYAML:
		return yaml.NewEncoder(out).Encode(detail)
	case FormatParquet:
		data, err := LocationsParquet(detail)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// HeartRateStats summarizes heart rate samples.
type HeartRateStats struct {
	Count int
	Min   float64
	Max   float64
	Avg   float64
}

// SummarizeHeartRate returns the count, min, max, and mean of samples.
func SummarizeHeartRate(samples []models.HeartRateSample) HeartRateStats {
	stats := HeartRateStats{Count: len(samples)}
	if len(samples) == 0 {
		return stats
	}
	stats.Min, stats.Max = math.Inf(1), math.Inf(-1)
	sum := 0.0
	for _, s := range samples {
		stats.Min = math.Min(stats.Min, s.Value)
		stats.Max = math.Max(stats.Max, s.Value)
		sum += s.Value
	}
	stats.Avg = sum / float64(len(samples))
	return stats
}

func writeDetailSummary(out io.Writer, format Format, detail *models.WorkoutDetail) error {
	w := detail.Workout
	hr := SummarizeHeartRate(detail.HeartRate)

	lines := []string{
		fmt.Sprintf("Workout:   %s (%s)", w.ID.String()[:8], w.Kind),
		fmt.Sprintf("Started:   %s", w.StartedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Duration:  %s", FormatDuration(w.Duration().Seconds())),
		fmt.Sprintf("Locations: %d", len(detail.Locations)),
	}
	if hr.Count > 0 {
		lines = append(lines, fmt.Sprintf("Heart rate: %d samples, avg %.0f, min %.0f, max %.0f bpm", hr.Count, hr.Avg, hr.Min, hr.Max))
	} else {
		lines = append(lines, "Heart rate: none")
	}

	if format == FormatMarkdown {
		var sb strings.Builder
		fmt.Fprintf(&sb, "## %s workout\n\n", w.Kind)
		for _, l := range lines {
			fmt.Fprintf(&sb, "- %s\n", l)
		}
		_, err := io.WriteString(out, sb.String())
		return err
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
