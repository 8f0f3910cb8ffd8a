// Package cmdgate screens command lines against the configured deny-list and
// adapts the terminal manager into the tool envelope shapes.
package cmdgate

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nextlevelbuilder/hostmcp/internal/cmdparse"
	"github.com/nextlevelbuilder/hostmcp/internal/config"
	"github.com/nextlevelbuilder/hostmcp/internal/terminal"
)

// Envelope is the common wrapper for command tool results.
type Envelope struct {
	IsError   bool   `json:"isError"`
	Type      string `json:"type"` // "text" or "result"
	Content   string `json:"content"`
	PID       *int   `json:"pid,omitempty"`
	IsBlocked *bool  `json:"isBlocked,omitempty"`
}

func errorEnvelope(content string) Envelope {
	return Envelope{IsError: true, Type: "text", Content: content}
}

// Gate couples the parser, the deny-list, and the terminal manager.
type Gate struct {
	cfg  *config.Store
	term *terminal.Manager
}

func New(cfg *config.Store, term *terminal.Manager) *Gate {
	return &Gate{cfg: cfg, term: term}
}

// Terminal exposes the underlying manager.
func (g *Gate) Terminal() *terminal.Manager {
	return g.term
}

// ValidateCommand reports whether every base command of the composite line is
// off the deny-list. An empty deny-list allows everything.
func (g *Gate) ValidateCommand(command string) bool {
	blocked := g.cfg.BlockedCommands()
	if len(blocked) == 0 {
		return true
	}
	for _, base := range cmdparse.ExtractCommands(command) {
		if slices.Contains(blocked, base) {
			slog.Warn("command blocked", "base", base)
			return false
		}
	}
	return true
}

// ExecuteCommand screens the command and delegates to the terminal manager.
func (g *Gate) ExecuteCommand(command string, timeout time.Duration, shell string) Envelope {
	if !g.ValidateCommand(command) {
		return errorEnvelope(fmt.Sprintf("command is blocked: %s", command))
	}
	res, err := g.term.ExecuteCommand(command, timeout, shell)
	if err != nil {
		return errorEnvelope(err.Error())
	}
	pid := res.PID
	blocked := res.Blocked
	return Envelope{
		Type:      "result",
		Content:   res.Output,
		PID:       &pid,
		IsBlocked: &blocked,
	}
}

// ReadOutput polls a session's output.
func (g *Gate) ReadOutput(pid int, full bool) (terminal.ReadResult, error) {
	return g.term.ReadOutput(pid, full)
}

// ForceTerminate tears down an active session.
func (g *Gate) ForceTerminate(pid int) Envelope {
	if !g.term.ForceTerminate(pid) {
		return errorEnvelope(fmt.Sprintf("no active session for pid %d", pid))
	}
	return Envelope{Type: "text", Content: fmt.Sprintf("terminated process %d", pid)}
}

// ActiveSessions lists the live sessions.
func (g *Gate) ActiveSessions() []terminal.ActiveInfo {
	return g.term.ActiveSessions()
}
