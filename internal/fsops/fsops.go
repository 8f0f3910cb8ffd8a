package fsops

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
	"github.com/nextlevelbuilder/hostmcp/internal/timebox"
)

// Per-operation deadlines on the blocking work.
const (
	readTimeout   = 10 * time.Second
	writeTimeout  = 30 * time.Second
	moveTimeout   = 30 * time.Second
	deleteTimeout = 10 * time.Second
	listTimeout   = 10 * time.Second
	mkdirTimeout  = 10 * time.Second
)

// Write modes.
const (
	ModeRewrite = "rewrite"
	ModeAppend  = "append"
)

// FileResult is the outcome of a read: UTF-8 text sliced by line range, or a
// base64 payload for images and undecodable files.
type FileResult struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	IsImage  bool   `json:"is_image"`
}

// Entry describes one directory listing item.
type Entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
	Size        int64  `json:"size"`
	Modified    int64  `json:"modified"`
}

// Ops performs policy-gated filesystem operations. Every operation
// normalizes, validates against the allow-list, and runs its blocking work
// through timebox with the per-op deadline.
type Ops struct {
	cfg    *config.Store
	policy *Policy
}

func NewOps(cfg *config.Store) *Ops {
	return &Ops{cfg: cfg, policy: NewPolicy(cfg)}
}

// Policy exposes the underlying path policy.
func (o *Ops) Policy() *Policy {
	return o.policy
}

// checkPath normalizes path and enforces the policy. requireExists also
// demands the target itself is present.
func (o *Ops) checkPath(path string, requireExists bool) (string, error) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return "", err
	}
	if !o.policy.IsPathValid(normalized) {
		return "", fmt.Errorf("path is not valid: %s", normalized)
	}
	if requireExists {
		if _, err := os.Stat(normalized); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("path does not exist: %s", normalized)
			}
			return "", err
		}
	}
	return normalized, nil
}

// Read returns the file at path. Images come back base64-encoded; text files
// are sliced to [offset, offset+length) lines unless readAll is set. A file
// that fails UTF-8 decoding falls back to base64 with the range ignored.
// length <= 0 means "use the configured max_read_length".
func (o *Ops) Read(path string, offset, length int, readAll bool) (FileResult, error) {
	normalized, err := o.checkPath(path, true)
	if err != nil {
		return FileResult{}, err
	}
	if offset < 0 {
		return FileResult{}, fmt.Errorf("offset must be greater than or equal to 0")
	}
	if length <= 0 {
		length = o.cfg.MaxReadLength()
	}

	mimeType := MimeType(normalized)
	isImage := IsImage(mimeType)

	content, err := timebox.RunDefault("read_file", readTimeout, "", func() (string, error) {
		data, err := os.ReadFile(normalized)
		if err != nil {
			return "", err
		}
		if isImage || !utf8.Valid(data) {
			return base64.StdEncoding.EncodeToString(data), nil
		}
		if readAll {
			return string(data), nil
		}
		lines := splitLines(string(data))
		if offset >= len(lines) {
			return "", nil
		}
		end := min(offset+length, len(lines))
		return strings.Join(lines[offset:end], ""), nil
	})
	if err != nil {
		return FileResult{}, fmt.Errorf("read %s: %w", normalized, err)
	}

	return FileResult{
		Content:  content,
		Path:     normalized,
		MimeType: mimeType,
		IsImage:  isImage,
	}, nil
}

// Write stores content at path as UTF-8, overwriting or appending per mode.
func (o *Ops) Write(path, content, mode string) error {
	if mode == "" {
		mode = ModeRewrite
	}
	if mode != ModeRewrite && mode != ModeAppend {
		return fmt.Errorf("unknown write mode: %s", mode)
	}
	normalized, err := o.checkPath(path, false)
	if err != nil {
		return err
	}

	_, err = timebox.Run("write_file", writeTimeout, func() (struct{}, error) {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if mode == ModeAppend {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(normalized, flags, 0o644)
		if err != nil {
			return struct{}{}, err
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, f.Close()
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", normalized, err)
	}
	return nil
}

// Move renames src to dest, creating dest's parent if missing. An existing
// destination is overwritten.
func (o *Ops) Move(src, dest string) error {
	srcPath, err := o.checkPath(src, true)
	if err != nil {
		return err
	}
	destPath, err := o.checkPath(dest, false)
	if err != nil {
		return err
	}

	_, err = timebox.Run("move_file", moveTimeout, func() (struct{}, error) {
		if dir := filepath.Dir(destPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, os.Rename(srcPath, destPath)
	})
	if err != nil {
		return fmt.Errorf("move %s -> %s: %w", srcPath, destPath, err)
	}
	return nil
}

// Delete removes the file at path.
func (o *Ops) Delete(path string) error {
	normalized, err := o.checkPath(path, true)
	if err != nil {
		return err
	}
	_, err = timebox.Run("delete_file", deleteTimeout, func() (struct{}, error) {
		return struct{}{}, os.Remove(normalized)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", normalized, err)
	}
	return nil
}

// List enumerates the entries of the directory at path.
func (o *Ops) List(path string) ([]Entry, error) {
	normalized, err := o.checkPath(path, true)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(normalized)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", normalized)
	}

	entries, err := timebox.RunDefault("list_files", listTimeout, []Entry{}, func() ([]Entry, error) {
		dirents, err := os.ReadDir(normalized)
		if err != nil {
			return nil, err
		}
		items := make([]Entry, 0, len(dirents))
		for _, de := range dirents {
			full := filepath.Join(normalized, de.Name())
			fi, err := de.Info()
			if err != nil {
				slog.Warn("skipping unreadable entry", "path", full, "error", err)
				continue
			}
			items = append(items, Entry{
				Name:        de.Name(),
				Path:        full,
				IsDirectory: de.IsDir(),
				Size:        fi.Size(),
				Modified:    fi.ModTime().Unix(),
			})
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", normalized, err)
	}
	return entries, nil
}

// CreateDirectory makes the directory tree at path, idempotently.
func (o *Ops) CreateDirectory(path string) error {
	normalized, err := o.checkPath(path, false)
	if err != nil {
		return err
	}
	_, err = timebox.Run("create_directory", mkdirTimeout, func() (struct{}, error) {
		return struct{}{}, os.MkdirAll(normalized, 0o755)
	})
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", normalized, err)
	}
	return nil
}

// splitLines splits keeping line terminators, so joining a slice reproduces
// the original byte range.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
