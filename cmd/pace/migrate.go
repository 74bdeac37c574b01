// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves everything from the configured store into a fresh SQLite or Badger store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/pace/internal/config"
	"github.com/harperreed/pace/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDest   string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all workouts, samples, routes, and heart rate from the configured
store into another backend.

IMPORTANT:

  - The destination must be empty; existing data is never overwritten
  - The source store is left untouched
  - Run with --dry-run first to see what would be migrated

USAGE:

  pace migrate --to badger --dry-run   # Preview
  pace migrate --to badger             # Copy into ~/.local/share/pace/kv
  pace migrate --to sqlite --dest /tmp/pace

AFTER MIGRATION:

  Point pace at the new store with "backend" in ~/.config/pace/config.json
  or PACE_BACKEND.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch migrateTo {
		case config.BackendSQLite, config.BackendBadger:
		default:
			return fmt.Errorf("unknown backend: %q (use sqlite or badger)", migrateTo)
		}

		dest := migrateDest
		if dest == "" {
			dest = cfg.GetDataDir()
		}
		dest = config.ExpandPath(dest)

		if migrateTo == cfg.GetBackend() && dest == cfg.GetDataDir() {
			return fmt.Errorf("destination is the current %s store", migrateTo)
		}

		inUse, err := destinationInUse(migrateTo, dest)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("destination %s store in %s already has data", migrateTo, dest)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			data, err := storage.Dump(cmd.Context(), repo)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Would copy %d workouts and %d heart rate samples from %s to %s in %s\n",
				len(data.Workouts), len(data.HeartRate), cfg.GetBackend(), migrateTo, dest)
			return nil
		}

		if err := os.MkdirAll(dest, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		dst, err := config.OpenBackend(migrateTo, dest, cfg.GetBatchSize())
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(cmd.Context(), repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %s → %s", cfg.GetBackend(), migrateTo)
		printSummary(cmd, summary)
		return nil
	},
}

// destinationInUse reports whether the backend's files under dir hold data.
func destinationInUse(backend, dir string) (bool, error) {
	if backend == config.BackendBadger {
		return storage.IsDirNonEmpty(filepath.Join(dir, "kv"))
	}
	info, err := os.Stat(filepath.Join(dir, "pace.db"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() > 0, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or badger")
	migrateCmd.Flags().StringVar(&migrateDest, "dest", "", "destination data directory (default: configured data dir)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
