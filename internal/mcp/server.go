// ABOUTME: MCP server setup for the pace activity store.
// ABOUTME: Wraps the MCP server around the workout service.
package mcp

import (
	"context"

	"github.com/harperreed/pace/internal/workout"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with workout service access.
type Server struct {
	mcpServer *mcp.Server
	svc       *workout.Service
}

// NewServer creates a new MCP server answering from svc.
func NewServer(svc *workout.Service) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pace",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
