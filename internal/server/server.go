// Package server registers the hostmcp tool surface on an MCP stdio server.
// Handlers adapt tool-call arguments into the core subsystems and serialize
// their structured results back as JSON text content.
package server

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/hostmcp/internal/cmdgate"
	"github.com/nextlevelbuilder/hostmcp/internal/config"
	"github.com/nextlevelbuilder/hostmcp/internal/fsops"
	"github.com/nextlevelbuilder/hostmcp/internal/terminal"
)

// Server bundles the core subsystems behind the MCP tool surface.
type Server struct {
	cfg  *config.Store
	ops  *fsops.Ops
	gate *cmdgate.Gate
	mcp  *server.MCPServer
}

// New wires the subsystems around one shared configuration store and
// registers every tool.
func New(cfg *config.Store, version string) *Server {
	s := &Server{
		cfg:  cfg,
		ops:  fsops.NewOps(cfg),
		gate: cmdgate.New(cfg, terminal.NewManager(cfg)),
	}
	s.mcp = server.NewMCPServer(
		"hostmcp",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerFileTools()
	s.registerConfigTools()
	s.registerCommandTools()
	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// jsonResult marshals v into a text content block.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
