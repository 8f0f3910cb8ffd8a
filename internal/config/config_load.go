package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/titanous/json5"
)

// New creates a store seeded with defaults. When path is non-empty the file is
// loaded over (or instead of) the defaults; a missing file is not an error, a
// malformed one is fatal.
func New(path string) (*Store, error) {
	s := &Store{path: path, values: Defaults()}
	if path == "" {
		return s, nil
	}
	if err := s.loadFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFile reads and applies the config file at path. When the loaded object
// sets add_default_config, its keys are merged over the defaults; otherwise
// it replaces them wholesale.
func (s *Store) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("config file not found, using defaults", "path", path)
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var loaded map[string]any
	if err := json5.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	values := loaded
	if merge, _ := loaded[KeyAddDefaultConfig].(bool); merge {
		values = Defaults()
		for k, v := range loaded {
			values[k] = v
		}
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	slog.Info("configuration loaded", "path", path, "keys", len(values))
	return nil
}

// Save writes the current options as indented JSON. An empty path saves to
// the store's backing file; having neither is an error.
func (s *Store) Save(path string) error {
	if path == "" {
		path = s.Path()
	}
	if path == "" {
		return fmt.Errorf("no path to save configuration to")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	slog.Info("configuration saved", "path", path)
	return nil
}

// Watch reloads the backing file whenever it changes, until ctx is done.
// Editors replace files rather than writing in place, so Create events on the
// watched directory are treated the same as Write events on the file.
func (s *Store) Watch(ctx context.Context) error {
	path := s.Path()
	if path == "" {
		return fmt.Errorf("no config file to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := s.loadFile(abs); err != nil {
					slog.Error("config reload failed", "path", abs, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}
