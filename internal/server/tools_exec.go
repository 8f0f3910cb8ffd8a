package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/hostmcp/internal/terminal"
)

func (s *Server) registerCommandTools() {
	s.mcp.AddTool(mcp.NewTool("execute_command",
		mcp.WithDescription("Run a shell command. A command still running at the timeout is promoted to blocked and keeps its PID as a handle for read_output and force_terminate."),
		mcp.WithString("command", mcp.Required(), mcp.Description("The command line to execute")),
		mcp.WithNumber("timeout", mcp.Required(), mcp.Description("Seconds to wait for completion before promoting to blocked")),
		mcp.WithString("shell", mcp.Description("Shell to run under (default: configured default_shell)")),
	), s.handleExecuteCommand)

	s.mcp.AddTool(mcp.NewTool("read_output",
		mcp.WithDescription("Drain new output from a session; reports exit code and runtime once the process has finished."),
		mcp.WithNumber("pid", mcp.Required(), mcp.Description("PID returned by execute_command")),
		mcp.WithBoolean("is_full", mcp.Description("Return the cumulative output instead of only new bytes")),
	), s.handleReadOutput)

	s.mcp.AddTool(mcp.NewTool("get_active_sessions",
		mcp.WithDescription("List live command sessions with their blocked flag and runtime."),
	), s.handleActiveSessions)

	s.mcp.AddTool(mcp.NewTool("force_terminate",
		mcp.WithDescription("Interrupt an active session's process group, escalating to kill after one second."),
		mcp.WithNumber("pid", mcp.Required(), mcp.Description("PID of the session to terminate")),
	), s.handleForceTerminate)
}

func (s *Server) handleExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeoutSec, err := req.RequireFloat("timeout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	shell := req.GetString("shell", "")

	timeout := time.Duration(timeoutSec * float64(time.Second))
	return jsonResult(s.gate.ExecuteCommand(command, timeout, shell))
}

func (s *Server) handleReadOutput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pid, err := req.RequireInt("pid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	full := req.GetBool("is_full", false)

	res, err := s.gate.ReadOutput(pid, full)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleActiveSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := make(map[int]terminal.ActiveInfo)
	for _, info := range s.gate.ActiveSessions() {
		sessions[info.PID] = info
	}
	return jsonResult(sessions)
}

func (s *Server) handleForceTerminate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pid, err := req.RequireInt("pid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.gate.ForceTerminate(pid))
}
