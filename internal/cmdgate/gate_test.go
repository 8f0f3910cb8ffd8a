//go:build !windows

package cmdgate

import (
	"strings"
	"testing"
	"time"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
	"github.com/nextlevelbuilder/hostmcp/internal/terminal"
)

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	cfg, err := config.New("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.SetValue(config.KeyDefaultShell, "/bin/sh")
	return New(cfg, terminal.NewManager(cfg))
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"plain allowed", "ls -la", true},
		{"blocked base", "sudo rm -rf /", false},
		{"blocked behind separator", "echo ok; mkfs /dev/sda", false},
		{"blocked behind env assignment", "JAVA_HOME=/x sudo id", false},
		{"blocked inside subshell", "(dd if=/dev/zero)", false},
		{"blocked name quoted as argument", `echo "sudo"`, true},
	}
	g := newTestGate(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateCommand(tt.command); got != tt.want {
				t.Errorf("ValidateCommand(%q) = %v, want %v", tt.command, got, tt.want)
			}
		})
	}
}

func TestEmptyDenyListAllowsAll(t *testing.T) {
	g := newTestGate(t)
	g.cfg.SetValue(config.KeyBlockedCommands, []string{})
	if !g.ValidateCommand("sudo id") {
		t.Error("empty deny-list should allow everything")
	}
}

func TestExecuteCommandBlockedEnvelope(t *testing.T) {
	g := newTestGate(t)
	env := g.ExecuteCommand("sudo rm -rf /", 5*time.Second, "")
	if !env.IsError || env.Type != "text" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Content != "command is blocked: sudo rm -rf /" {
		t.Errorf("Content = %q", env.Content)
	}
	if env.PID != nil {
		t.Error("blocked command must not spawn")
	}
}

func TestExecuteCommandSuccessEnvelope(t *testing.T) {
	g := newTestGate(t)
	env := g.ExecuteCommand("echo hi", 5*time.Second, "")
	if env.IsError {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Type != "result" || env.PID == nil || env.IsBlocked == nil {
		t.Fatalf("envelope = %+v", env)
	}
	if *env.IsBlocked {
		t.Error("quick command reported blocked")
	}
	if !strings.Contains(env.Content, "hi") {
		t.Errorf("Content = %q", env.Content)
	}
}

func TestExecuteCommandSpawnFailure(t *testing.T) {
	g := newTestGate(t)
	env := g.ExecuteCommand("echo hi", 5*time.Second, "/nonexistent/shell")
	if !env.IsError || env.Type != "text" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestForceTerminateEnvelope(t *testing.T) {
	g := newTestGate(t)
	env := g.ForceTerminate(999999)
	if !env.IsError {
		t.Error("unknown pid should be an error envelope")
	}

	res := g.ExecuteCommand("sleep 30", 100*time.Millisecond, "")
	if res.IsError || res.PID == nil {
		t.Fatalf("envelope = %+v", res)
	}
	env = g.ForceTerminate(*res.PID)
	if env.IsError {
		t.Errorf("envelope = %+v", env)
	}
}

func TestReadOutputPassThrough(t *testing.T) {
	g := newTestGate(t)
	res := g.ExecuteCommand("echo hi", 5*time.Second, "")
	if res.IsError || res.PID == nil {
		t.Fatalf("envelope = %+v", res)
	}
	read, err := g.ReadOutput(*res.PID, false)
	if err != nil {
		t.Fatal(err)
	}
	if read.Type != "completed" {
		t.Errorf("Type = %q, want completed", read.Type)
	}
}
