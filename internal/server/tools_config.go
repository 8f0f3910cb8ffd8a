package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerConfigTools() {
	s.mcp.AddTool(mcp.NewTool("get_config",
		mcp.WithDescription("Return the current configuration snapshot."),
	), s.handleGetConfig)

	s.mcp.AddTool(mcp.NewTool("set_config",
		mcp.WithDescription("Set one configuration option and return the updated snapshot."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Option key")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value, JSON-encoded; a value that is not valid JSON is stored as the literal string")),
	), s.handleSetConfig)

	s.mcp.AddTool(mcp.NewTool("update_config",
		mcp.WithDescription("Apply a batch of configuration options and return the updated snapshot."),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Object of option keys to values")),
	), s.handleUpdateConfig)

	s.mcp.AddTool(mcp.NewTool("reset_config",
		mcp.WithDescription("Restore the default configuration and return the snapshot."),
	), s.handleResetConfig)

	s.mcp.AddTool(mcp.NewTool("save_config",
		mcp.WithDescription("Persist the current configuration as JSON."),
		mcp.WithString("path", mcp.Description("Target file (default: the loaded config file)")),
	), s.handleSaveConfig)
}

func (s *Server) handleGetConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.cfg.Snapshot())
}

func (s *Server) handleSetConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	s.cfg.SetValue(key, value)
	return jsonResult(s.cfg.Snapshot())
}

func (s *Server) handleUpdateConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	values, ok := args["values"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("values must be an object"), nil
	}
	return jsonResult(s.cfg.Update(values))
}

func (s *Server) handleResetConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.cfg.Reset())
}

func (s *Server) handleSaveConfig(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if err := s.cfg.Save(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(true)
}
