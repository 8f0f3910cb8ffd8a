package fsops

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
)

// ErrEmptyPath rejects operations called with no path.
var ErrEmptyPath = errors.New("path is empty")

// NormalizePath expands a leading ~ to the user's home directory, makes the
// path absolute, canonicalizes it, and strips any trailing separator (the
// root keeps its single separator).
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	sep := string(os.PathSeparator)
	if len(abs) > 1 {
		abs = strings.TrimSuffix(abs, sep)
	}
	return abs, nil
}

// Policy validates paths against the configured allow-list.
type Policy struct {
	cfg *config.Store
}

func NewPolicy(cfg *config.Store) *Policy {
	return &Policy{cfg: cfg}
}

// AllowedDirs returns the normalized allow-list. An empty configured list is
// seeded with the user's home directory; the seed is written to the in-memory
// store only, never persisted.
func (p *Policy) AllowedDirs() []string {
	dirs := p.cfg.AllowedDirectories()
	if len(dirs) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot seed allowed directories", "error", err)
			return []string{}
		}
		dirs = []string{home}
		p.cfg.SetValue(config.KeyAllowedDirectories, dirs)
	}
	normalized := make([]string, 0, len(dirs))
	for _, d := range dirs {
		nd, err := NormalizePath(d)
		if err != nil {
			slog.Warn("skipping unnormalizable allowed directory", "dir", d, "error", err)
			continue
		}
		normalized = append(normalized, nd)
	}
	return normalized
}

// IsPathAllowed reports whether path falls inside the allow-list. A raw
// configured entry of "/" means unrestricted, as does an effectively empty
// allow-list (only reachable when home seeding fails). The prefix match
// requires a separator boundary so /home/user2 is not inside /home/user.
func (p *Policy) IsPathAllowed(path string) bool {
	for _, d := range p.cfg.AllowedDirectories() {
		if d == "/" {
			return true
		}
	}
	dirs := p.AllowedDirs()
	if len(dirs) == 0 {
		return true
	}

	normalized, err := NormalizePath(path)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	for _, dir := range dirs {
		if normalized == dir || strings.HasPrefix(normalized, dir+sep) {
			return true
		}
	}
	return false
}

// ValidateParentDirs walks up from path's parent and reports whether some
// ancestor directory exists.
func ValidateParentDirs(path string) bool {
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			return true
		}
		next := filepath.Dir(parent)
		if next == parent {
			return false
		}
		parent = next
	}
}

// IsPathValid combines the existence walk with the allow-list check.
func (p *Policy) IsPathValid(path string) bool {
	return ValidateParentDirs(path) && p.IsPathAllowed(path)
}
