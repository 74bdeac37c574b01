// ABOUTME: CLI commands for inspecting and deleting single workouts.
// ABOUTME: show prints a summary, detail joins locations with heart rate, delete removes it.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/report"
	"github.com/harperreed/pace/internal/workout"
	"github.com/spf13/cobra"
)

var (
	detailFormat string
	detailOutput string
)

var showCmd = &cobra.Command{
	Use:   "show [id|latest]",
	Short: "Show a workout",
	Long: `Show a workout's summary and the events the device recorded.

EXAMPLES:

  pace show abc123     # By ID prefix
  pace show            # Latest workout`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(w.Kind), faint.Sprint(w.ID))
		fmt.Fprintf(out, "  Started:  %s\n", w.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "  Ended:    %s\n", w.EndedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "  Duration: %s\n", report.FormatDuration(w.Duration().Seconds()))
		if w.Source != nil {
			fmt.Fprintf(out, "  Source:   %s\n", *w.Source)
		}
		if w.Notes != nil && *w.Notes != "" {
			fmt.Fprintf(out, "  Notes:    %s\n", *w.Notes)
		}

		recorded := workout.PrerecordedSplits(w)
		fmt.Fprintf(out, "  Events:   %d (%d recorded splits)\n", len(w.Events), len(recorded))
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail [id|latest]",
	Short: "Show route locations and heart rate for a workout",
	Long: `Join a workout's route locations with the heart rate recorded during it.

Text and markdown print a summary. JSON and YAML include every sample.
Parquet writes one row per location with the latest heart rate reading
(requires --output).

EXAMPLES:

  pace detail abc123
  pace detail latest --format json -o run.json
  pace detail abc123 --format parquet -o run.parquet`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(detailFormat)
		if err != nil {
			return err
		}

		w, err := resolveWorkout(cmd.Context(), args)
		if err != nil {
			return err
		}

		detail, err := svc.GetWorkoutDetail(cmd.Context(), w)
		if err != nil {
			return fmt.Errorf("failed to load detail: %w", err)
		}

		return writeOutput(cmd.OutOrStdout(), detailOutput, format, func(out io.Writer) error {
			return report.WriteDetail(out, format, detail)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a workout",
	Long: `Delete a workout by its ID or ID prefix.

The workout's events, distance samples, and routes are deleted with it.
Heart rate samples are kept; they are not owned by a workout.

CAUTION:

  This permanently deletes the workout. There is no undo.
  If the prefix matches multiple workouts, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := svc.FindWorkout(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := repo.DeleteWorkout(cmd.Context(), w.ID.String()); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}

		color.Yellow("✗ Deleted %s workout", w.Kind)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n",
			color.New(color.Faint).Sprint(shortID(w)),
			w.StartedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	detailCmd.Flags().StringVarP(&detailFormat, "format", "f", "text", "output format: text, markdown, json, yaml, parquet")
	detailCmd.Flags().StringVarP(&detailOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(detailCmd)
	rootCmd.AddCommand(deleteCmd)
}
