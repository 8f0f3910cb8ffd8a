package terminal

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
)

// maxCompletedSessions bounds the completed-session registry; the entry with
// the oldest end time is evicted first.
const maxCompletedSessions = 100

// ErrNoSession is returned for PIDs with no active or completed session.
var ErrNoSession = fmt.Errorf("no such session")

// ExecResult is the immediate outcome of spawning a command.
type ExecResult struct {
	PID     int    `json:"pid"`
	Output  string `json:"output"`
	Blocked bool   `json:"isBlocked"`
}

// ReadResult is the outcome of polling a session's output.
type ReadResult struct {
	PID      int     `json:"pid"`
	IsFull   bool    `json:"is_full"`
	Output   string  `json:"output"`
	Type     string  `json:"type"` // "active" or "completed"
	ExitCode *int    `json:"exit_code,omitempty"`
	Runtime  float64 `json:"runtime,omitempty"` // seconds
}

// ActiveInfo is one row of the active-session listing.
type ActiveInfo struct {
	PID     int     `json:"pid"`
	Blocked bool    `json:"isBlocked"`
	Runtime float64 `json:"runtime"` // seconds
}

// Manager spawns shell commands and tracks their sessions. A PID lives in
// exactly one of active or completed; the transition happens when an exit is
// observed, either by ExecuteCommand's wait or by a later ReadOutput.
type Manager struct {
	cfg *config.Store

	mu        sync.Mutex
	active    map[int]*ActiveSession
	completed map[int]*CompletedSession
}

func NewManager(cfg *config.Store) *Manager {
	return &Manager{
		cfg:       cfg,
		active:    make(map[int]*ActiveSession),
		completed: make(map[int]*CompletedSession),
	}
}

// resolveShell picks the shell: explicit argument, then the configured
// default, then the platform fallback.
func (m *Manager) resolveShell(shell string) string {
	if shell != "" {
		return shell
	}
	if sh := m.cfg.DefaultShell(); sh != "" {
		return sh
	}
	return platformShell()
}

// ExecuteCommand spawns command under the resolved shell in its own process
// group, with stdout and stderr merged into one captured stream, and waits up
// to timeout for it to exit. On exit within the deadline the session moves to
// completed; otherwise it is promoted to blocked and stays active, its PID a
// handle for later polling and termination. A timeout <= 0 returns at once
// with the session active and not marked blocked.
func (m *Manager) ExecuteCommand(command string, timeout time.Duration, shell string) (ExecResult, error) {
	sh := m.resolveShell(shell)
	cmd := shellCommand(sh, command)

	pr, pw, err := os.Pipe()
	if err != nil {
		return ExecResult{}, fmt.Errorf("create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	setProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return ExecResult{}, fmt.Errorf("spawn %q under %s: %w", command, sh, err)
	}
	// The child holds its own copy of the write end; closing ours lets the
	// pump see EOF once the child (and any descendants) are done with it.
	pw.Close()

	pid := cmd.Process.Pid
	session := newActiveSession(pid, cmd, time.Now())
	m.mu.Lock()
	m.active[pid] = session
	m.mu.Unlock()

	go m.pump(session, pr)
	slog.Debug("command spawned", "pid", pid, "shell", sh)

	if timeout <= 0 {
		return ExecResult{PID: pid, Output: "", Blocked: false}, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-session.done:
		output := session.snapshotAll()
		m.mu.Lock()
		m.finalizeLocked(session)
		m.mu.Unlock()
		return ExecResult{PID: pid, Output: output, Blocked: false}, nil
	case <-timer.C:
		session.setBlocked()
		slog.Debug("command promoted to blocked", "pid", pid, "timeout", timeout)
		return ExecResult{PID: pid, Output: session.snapshotAll(), Blocked: true}, nil
	}
}

// pump drains the merged output stream into the session's buffers until the
// child closes it, then reaps the process. It keeps running after a timed
// ExecuteCommand return so later ReadOutput calls see bytes produced past the
// deadline.
func (m *Manager) pump(s *ActiveSession, r *os.File) {
	defer r.Close()
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			s.appendOutput(line)
		}
		if err != nil {
			if err != io.EOF {
				slog.Warn("output pump read failed", "pid", s.PID, "error", err)
			}
			break
		}
	}

	err := s.cmd.Wait()
	s.mu.Lock()
	if err == nil {
		s.exitCode = 0
	} else if ee, ok := err.(*exec.ExitError); ok {
		s.exitCode = ee.ExitCode()
	} else {
		s.exitCode = -1
		slog.Warn("wait failed", "pid", s.PID, "error", err)
	}
	s.endTime = time.Now()
	s.mu.Unlock()
	close(s.done)
}

// finalizeLocked moves an active session into the completed registry,
// evicting the oldest completed entry beyond the cap. Caller holds m.mu.
// Idempotent: a session already moved is left alone.
func (m *Manager) finalizeLocked(s *ActiveSession) *CompletedSession {
	if cs, ok := m.completed[s.PID]; ok {
		return cs
	}

	s.mu.Lock()
	code := s.exitCode
	end := s.endTime
	output := s.allOutput.String()
	s.mu.Unlock()

	cs := &CompletedSession{
		PID:       s.PID,
		Output:    output,
		ExitCode:  &code,
		StartTime: s.StartTime,
		EndTime:   end,
	}
	delete(m.active, s.PID)
	m.completed[s.PID] = cs

	for len(m.completed) > maxCompletedSessions {
		oldestPID := 0
		var oldest time.Time
		first := true
		for pid, c := range m.completed {
			if first || c.EndTime.Before(oldest) {
				oldest = c.EndTime
				oldestPID = pid
				first = false
			}
		}
		delete(m.completed, oldestPID)
	}
	return cs
}

// ReadOutput drains new output for pid. With full set the cumulative output
// is returned instead, though the volatile buffer is cleared either way. A
// session observed exited transitions to completed and reports its exit code
// and runtime.
func (m *Manager) ReadOutput(pid int, full bool) (ReadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.active[pid]; ok {
		out := s.takeOutput(full)
		if s.exited() {
			cs := m.finalizeLocked(s)
			return ReadResult{
				PID:      pid,
				IsFull:   full,
				Output:   out,
				Type:     "completed",
				ExitCode: cs.ExitCode,
				Runtime:  cs.Runtime().Seconds(),
			}, nil
		}
		return ReadResult{PID: pid, IsFull: full, Output: out, Type: "active"}, nil
	}

	if cs, ok := m.completed[pid]; ok {
		return ReadResult{
			PID:      pid,
			IsFull:   full,
			Output:   cs.Output,
			Type:     "completed",
			ExitCode: cs.ExitCode,
			Runtime:  cs.Runtime().Seconds(),
		}, nil
	}

	return ReadResult{}, fmt.Errorf("%w: %d", ErrNoSession, pid)
}

// ForceTerminate interrupts the process group of an active session, waits a
// second, and kills it if still alive. Returns false when pid has no active
// session. The pump records the exit; the move into completed happens on a
// later ReadOutput.
func (m *Manager) ForceTerminate(pid int) bool {
	m.mu.Lock()
	s, ok := m.active[pid]
	m.mu.Unlock()
	if !ok {
		return false
	}

	if err := interruptProcess(s.cmd); err != nil {
		slog.Warn("interrupt failed", "pid", pid, "error", err)
	}
	select {
	case <-s.done:
		return true
	case <-time.After(time.Second):
	}
	if err := killProcess(s.cmd); err != nil {
		slog.Warn("kill failed", "pid", pid, "error", err)
	}
	return true
}

// ActiveSessions snapshots the live sessions.
func (m *Manager) ActiveSessions() []ActiveInfo {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]ActiveInfo, 0, len(m.active))
	for _, s := range m.active {
		infos = append(infos, ActiveInfo{
			PID:     s.PID,
			Blocked: s.Blocked(),
			Runtime: now.Sub(s.StartTime).Seconds(),
		})
	}
	return infos
}

// CompletedSessions snapshots the retained completed sessions.
func (m *Manager) CompletedSessions() []CompletedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletedSession, 0, len(m.completed))
	for _, cs := range m.completed {
		out = append(out, *cs)
	}
	return out
}
