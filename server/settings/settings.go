// Package settings holds per-user preferences persisted across runs.
// A Store is constructed once and handed to the components that need
// it; there is no package-level shared state.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	KeyDownloadFolder   = "download_folder"
	KeyLanguageIndex    = "language_index"
	KeyThemeMode        = "theme_mode"
	KeyCookiePath       = "cookie_file_path"
	KeyClipboardMonitor = "clipboard_monitor"
)

// defaults is the authoritative key table. Get on a key outside this
// table is an error; Get on a missing or mistyped value falls back to
// the default.
var defaults = map[string]any{
	KeyDownloadFolder:   "downloads",
	KeyLanguageIndex:    1,
	KeyThemeMode:        "dark",
	KeyCookiePath:       "",
	KeyClipboardMonitor: true,
}

var ErrUnknownKey = errors.New("settings: unknown key")

type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// Open loads the settings file at path, tolerating a missing or
// corrupt file by starting from defaults.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]any),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return s, nil
	}

	if err := yaml.Unmarshal(raw, &s.values); err != nil {
		slog.Warn("settings file unreadable, using defaults",
			slog.String("path", path),
			slog.Any("err", err),
		)
		s.values = make(map[string]any)
	}

	return s, nil
}

// Set stores value and synchronously persists the whole table.
func (s *Store) Set(key string, value any) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if value == nil {
		slog.Warn("ignoring nil settings value", slog.String("key", key))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.persistLocked()
}

// GetString returns the value for key, falling back to the default on
// a missing or mistyped entry.
func (s *Store) GetString(key string) string {
	v, def, err := s.lookup(key)
	if err != nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return def.(string)
}

func (s *Store) GetInt(key string) int {
	v, def, err := s.lookup(key)
	if err != nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def.(int)
}

func (s *Store) GetBool(key string) bool {
	v, def, err := s.lookup(key)
	if err != nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch b {
		case "true", "1", "t", "yes", "y":
			return true
		case "false", "0", "f", "no", "n":
			return false
		}
	case int:
		return b != 0
	}
	return def.(bool)
}

// All returns a copy of the effective table, defaults included.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(defaults))
	for k, def := range defaults {
		if v, ok := s.values[k]; ok {
			out[k] = v
		} else {
			out[k] = def
		}
	}
	return out
}

func (s *Store) lookup(key string) (value, def any, err error) {
	def, ok := defaults[key]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[key]; ok {
		return v, def, nil
	}
	return def, def, nil
}

func (s *Store) persistLocked() error {
	raw, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0o644)
}
