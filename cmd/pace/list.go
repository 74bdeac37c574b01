// ABOUTME: CLI command for listing workouts.
// ABOUTME: Supports filtering by activity kind and start date.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/report"
	"github.com/harperreed/pace/internal/workout"
	"github.com/spf13/cobra"
)

var (
	listKind  string
	listSince string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List workouts",
	Long: `List recent workouts, newest first.

OUTPUT FORMAT:

  Each line shows: ID  START  KIND  DURATION  (NOTES)

  The ID is an 8-character prefix you can pass to show, splits, and detail.

EXAMPLES:

  pace list                       # Last 20 workouts
  pace list --kind run            # Only runs
  pace list --since 2026-01-01    # Workouts this year
  pace list -n 50                 # Last 50 workouts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := workout.ListFilter{Limit: listLimit}
		if listKind != "" {
			kind, ok := models.ParseActivityKind(listKind)
			if !ok {
				return fmt.Errorf("unknown activity kind: %s", listKind)
			}
			filter.Kind = kind
		}
		if listSince != "" {
			t, err := parseTime(listSince)
			if err != nil {
				return fmt.Errorf("invalid date: %s", listSince)
			}
			filter.Since = t
		}

		workouts, err := svc.ListWorkouts(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(workouts) == 0 {
			fmt.Fprintln(out, "No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			notes := ""
			if w.Notes != nil && *w.Notes != "" {
				notes = faint.Sprintf(" (%s)", truncate(*w.Notes, 30))
			}
			fmt.Fprintf(out, "%s %s %s %s%s\n",
				faint.Sprint(shortID(w)),
				faint.Sprint(w.StartedAt.Local().Format("2006-01-02 15:04")),
				padRight(string(w.Kind), 10),
				report.FormatDuration(w.Duration().Seconds()),
				notes)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "filter by activity kind")
	listCmd.Flags().StringVar(&listSince, "since", "", "only workouts since date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}
