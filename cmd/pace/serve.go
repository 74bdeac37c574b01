// ABOUTME: CLI commands for the HTTP API and the MCP server.
// ABOUTME: Both serve the same workout service until interrupted.
package main

import (
	"github.com/harperreed/pace/internal/api"
	"github.com/harperreed/pace/internal/mcp"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP API",
	Long: `Start a read-only JSON API over your workouts.

ENDPOINTS:

  GET /healthz
  GET /workouts?kind=run&since=2026-01-01&limit=20
  GET /workouts/:id
  GET /workouts/:id/detail
  GET /workouts/:id/splits?distance=1000   (or ?unit=mi)
  GET /workouts/:id/paces

:id accepts an ID prefix or "latest".

EXAMPLES:

  pace serve
  pace serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddr()
		}
		return api.NewServer(svc, logger).Run(cmd.Context(), addr)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "pace": {
        "command": "pace",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_workouts          List recent workouts
  get_workout_detail     Locations and heart rate for a workout
  get_splits             Splits calculated from distance samples
  get_prerecorded_paces  Splits recorded by the device

AVAILABLE RESOURCES:

  pace://recent          Recent workouts summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc)
		if err != nil {
			return err
		}
		return server.Serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config http_addr or 127.0.0.1:8417)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
}
