// ABOUTME: CLI commands for calculated splits and recorded paces.
// ABOUTME: Renders as text, markdown, JSON, YAML, or parquet.
package main

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/report"
	"github.com/harperreed/pace/internal/workout"
	"github.com/spf13/cobra"
)

var (
	splitsDistance float64
	splitsUnit     string
	splitsFormat   string
	splitsOutput   string
)

var splitsCmd = &cobra.Command{
	Use:   "splits [id|latest]",
	Short: "Calculate splits from distance samples",
	Long: `Calculate fixed-distance splits from a workout's distance samples.

Time before the first sample and gaps between samples are not counted,
so a slow GPS lock or a dropped signal does not slow a split down.
The last split holds whatever distance is left over.

The split distance defaults to one --unit (1 km or 1 mi), or the
split_distance config setting when no unit is given.

EXAMPLES:

  pace splits                          # Latest workout, km splits
  pace splits abc123 --unit mi         # Mile splits
  pace splits abc123 --distance 400    # 400 m splits
  pace splits abc123 -f parquet -o splits.parquet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, format, err := splitOptions()
		if err != nil {
			return err
		}

		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}

		distance := splitsDistance
		if distance <= 0 && cmd.Flags().Changed("unit") {
			distance = unit.Meters()
		}

		splits, err := svc.GetSplits(cmd.Context(), w, distance)
		if err != nil {
			return fmt.Errorf("failed to calculate splits: %w", err)
		}
		return renderSplits(cmd, w, splits, workout.PaceSourceCalculated, unit, format)
	},
}

var pacesCmd = &cobra.Command{
	Use:   "paces [id|latest]",
	Short: "Show recorded splits, or calculated ones when none were recorded",
	Long: `Show the splits the recording device stored with a workout.

When the device recorded none, splits are calculated from distance samples
the same way 'pace splits' does. The header says which you are looking at.

EXAMPLES:

  pace paces abc123
  pace paces latest --unit mi --format markdown`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, format, err := splitOptions()
		if err != nil {
			return err
		}

		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}

		distance := splitsDistance
		if distance <= 0 && cmd.Flags().Changed("unit") {
			distance = unit.Meters()
		}

		splits, source, err := svc.Paces(cmd.Context(), w, distance)
		if err != nil {
			return fmt.Errorf("failed to load paces: %w", err)
		}
		return renderSplits(cmd, w, splits, source, unit, format)
	},
}

func splitOptions() (report.Unit, report.Format, error) {
	unit, err := report.ParseUnit(splitsUnit)
	if err != nil {
		return "", "", err
	}
	format, err := report.ParseFormat(splitsFormat)
	if err != nil {
		return "", "", err
	}
	if splitsDistance < 0 || math.IsNaN(splitsDistance) || math.IsInf(splitsDistance, 0) {
		return "", "", fmt.Errorf("distance must be a positive number of meters")
	}
	return unit, format, nil
}

func renderSplits(cmd *cobra.Command, w models.Workout, splits []models.SplitEvent, source workout.PaceSource, unit report.Unit, format report.Format) error {
	out := cmd.OutOrStdout()
	if format == report.FormatText && splitsOutput == "" {
		fmt.Fprintf(out, "%s %s %s\n",
			color.New(color.Faint).Sprint(shortID(w)),
			w.StartedAt.Local().Format("2006-01-02 15:04"),
			color.New(color.Faint).Sprintf("(%s)", source))
	}
	return writeOutput(out, splitsOutput, format, func(dst io.Writer) error {
		return report.WriteSplits(dst, format, splits, unit)
	})
}

func init() {
	for _, c := range []*cobra.Command{splitsCmd, pacesCmd} {
		c.Flags().Float64VarP(&splitsDistance, "distance", "d", 0, "split distance in meters")
		c.Flags().StringVarP(&splitsUnit, "unit", "u", "km", "pace unit: km or mi")
		c.Flags().StringVarP(&splitsFormat, "format", "f", "text", "output format: text, markdown, json, yaml, parquet")
		c.Flags().StringVarP(&splitsOutput, "output", "o", "", "output file (default: stdout)")
		rootCmd.AddCommand(c)
	}
}
