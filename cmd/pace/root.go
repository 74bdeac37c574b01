// ABOUTME: Root Cobra command for pace CLI.
// ABOUTME: Loads config and opens the store and workout service via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pace/internal/config"
	"github.com/harperreed/pace/internal/storage"
	"github.com/harperreed/pace/internal/workout"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	svc    *workout.Service
	logger *log.Logger

	flagBackend string
	flagDataDir string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pace",
	Short: "Workout splits, paces, and routes from your activity store",
	Long: `Pace reads workouts recorded by your devices and answers questions about them.

WHAT IT DOES:

  Splits     fixed-distance splits calculated from distance samples
  Paces      splits the device recorded, falling back to calculated ones
  Detail     route locations joined with heart rate for a workout

QUICK START:

  $ pace import morning-run.gpx     # Import a GPX or FIT file
  $ pace list                       # See recent workouts
  $ pace splits latest              # Kilometer splits for the latest workout
  $ pace splits abc123 --unit mi    # Mile splits for a workout
  $ pace detail abc123              # Locations and heart rate summary

SERVERS:

  $ pace serve    # Read-only HTTP API on 127.0.0.1:8417
  $ pace mcp      # Model Context Protocol server on stdio

DATA STORAGE:

  Workouts are stored in SQLite at ~/.local/share/pace/pace.db by default.
  Set "backend": "badger" in ~/.config/pace/config.json (or PACE_BACKEND)
  to use the embedded key-value store instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store init for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagVerbose {
			cfg.LogLevel = "debug"
		}

		logger, err = cfg.NewLogger(os.Stderr)
		if err != nil {
			return err
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.GetBackend(), err)
		}
		logger.Debug("store opened", "backend", cfg.GetBackend(), "data_dir", cfg.GetDataDir())

		svc = workout.NewService(repo,
			workout.WithObserver(workout.NewLogObserver(logger)),
			workout.WithSplitDistance(cfg.GetSplitDistance()),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or badger (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}
