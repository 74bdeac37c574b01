// ABOUTME: CLI commands for importing activity files and exporting backups.
// ABOUTME: GPX and FIT files become workouts; JSON backups restore everything.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/importer"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importKind   string
	exportOutput string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a GPX or FIT activity, or a JSON backup",
	Long: `Import an activity recorded by a watch or app, or restore a JSON backup.

FILE TYPES:

  .gpx    GPS track; each track segment becomes a route
  .fit    Garmin FIT activity; laps become recorded splits
  .json   Backup written by 'pace export json'

Distance samples are derived from consecutive track points. Heart rate
is imported when the file carries it.

EXAMPLES:

  pace import morning-run.gpx
  pace import ride.fit --kind ride
  pace import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		var kind models.ActivityKind
		if importKind != "" {
			k, ok := models.ParseActivityKind(importKind)
			if !ok {
				return fmt.Errorf("unknown activity kind: %s", importKind)
			}
			kind = k
		}

		format, err := importer.DetectFormat(filename)
		if err != nil {
			return err
		}

		var summary *storage.ImportSummary
		if format == importer.FormatJSON {
			raw, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			data, err := storage.ParseExport(raw)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			summary, err = storage.Load(cmd.Context(), repo, data)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
		} else {
			activity, err := importer.ReadFile(filename, kind)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			summary, err = importer.Save(cmd.Context(), repo, activity)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			logger.Debug("imported activity", "workout", activity.Record.Workout.ID, "kind", activity.Record.Workout.Kind)
		}

		color.Green("✓ Imported from %s", filename)
		printSummary(cmd, summary)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export all activity data",
	Long: `Export all workouts, samples, routes, and heart rate.

FORMATS:

  json   Full JSON export (suitable for backup/restore)
  yaml   YAML export (human-readable)

EXAMPLES:

  pace export json                  # Export all data as JSON
  pace export json -o backup.json   # Save to file
  pace export yaml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(cmd.Context(), repo)
		case "yaml":
			data, err = storage.ExportYAML(cmd.Context(), repo)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func printSummary(cmd *cobra.Command, s *storage.ImportSummary) {
	if s == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %d workouts, %d distance samples, %d routes (%d points), %d heart rate samples\n",
		s.Workouts, s.Distance, s.Routes, s.Points, s.HeartRate)
}

func init() {
	importCmd.Flags().StringVarP(&importKind, "kind", "k", "", "activity kind (overrides the file)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
