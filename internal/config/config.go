package config

import (
	"runtime"
	"sync"
)

// Recognized option keys.
const (
	KeyBlockedCommands    = "blocked_commands"
	KeyDefaultShell       = "default_shell"
	KeyAllowedDirectories = "allowed_directories"
	KeyMaxReadLength      = "max_read_length"
	KeyAddDefaultConfig   = "add_default_config"
)

// defaultBlockedCommands is the destructive/privileged set denied out of the box.
var defaultBlockedCommands = []string{
	"mkfs", "format", "mount", "umount", "fdisk", "dd", "parted", "diskpart",
	"sudo", "su", "passwd", "adduser", "useradd", "usermod", "groupadd",
	"chsh", "visudo", "shutdown", "reboot", "halt", "poweroff", "init",
	"iptables", "firewall", "netsh", "sfc", "bcdedit", "reg", "net", "sc",
	"runas", "cipher", "takeown",
}

// Store is the process-wide mutable settings store. Values are dynamic so a
// config file may carry keys the server does not recognize; they round-trip
// through Save untouched. One instance per process, shared by the policy
// gate, the command gate, and the tool handlers.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Defaults returns a fresh default option map.
func Defaults() map[string]any {
	shell := "bash"
	if runtime.GOOS == "windows" {
		shell = "powershell.exe"
	}
	blocked := make([]string, len(defaultBlockedCommands))
	copy(blocked, defaultBlockedCommands)
	return map[string]any{
		KeyBlockedCommands:    blocked,
		KeyDefaultShell:       shell,
		KeyAllowedDirectories: []string{},
		KeyMaxReadLength:      1000,
	}
}

// Snapshot returns a shallow copy of the current option map.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]any, len(s.values))
	for k, v := range s.values {
		snap[k] = v
	}
	return snap
}

// Value returns the current value for key, or nil if unset.
func (s *Store) Value(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// SetValue sets a single option.
func (s *Store) SetValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Update applies all entries of updates and returns the resulting snapshot.
func (s *Store) Update(updates map[string]any) map[string]any {
	s.mu.Lock()
	for k, v := range updates {
		s.values[k] = v
	}
	s.mu.Unlock()
	return s.Snapshot()
}

// Reset restores the default option map and returns the resulting snapshot.
func (s *Store) Reset() map[string]any {
	s.mu.Lock()
	s.values = Defaults()
	s.mu.Unlock()
	return s.Snapshot()
}

// Path returns the backing file path, or "" when the store is memory-only.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// AllowedDirectories returns the configured allow-list as strings. A missing
// or malformed entry list reads as empty.
func (s *Store) AllowedDirectories() []string {
	return toStringSlice(s.Value(KeyAllowedDirectories))
}

// BlockedCommands returns the configured deny-list as strings.
func (s *Store) BlockedCommands() []string {
	return toStringSlice(s.Value(KeyBlockedCommands))
}

// DefaultShell returns the configured shell, or "" if unset.
func (s *Store) DefaultShell() string {
	sh, _ := s.Value(KeyDefaultShell).(string)
	return sh
}

// MaxReadLength returns the text read line cap, falling back to 1000 when the
// stored value is missing or not numeric.
func (s *Store) MaxReadLength() int {
	switch v := s.Value(KeyMaxReadLength).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 1000
	}
}

// toStringSlice coerces a decoded JSON value ([]any or []string) to []string.
func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
