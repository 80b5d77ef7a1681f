// Package settings is the durable key/value store for device state that
// must survive power cycles. Values are opaque strings; callers own their
// encoding. The on-disk format is a flat YAML map, small enough to be
// rewritten atomically on every close.
package settings

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// keyPluginInstallation stores the serialized slot-to-plugin record.
const keyPluginInstallation = "pluginInstallation"

// Store is a file-backed settings collaborator. The open/close protocol
// mirrors the flash-settings discipline of the device: values are read
// into memory on Open and, for writable sessions, flushed on Close.
type Store struct {
	path string

	mu       sync.Mutex
	values   map[string]string
	open     bool
	readOnly bool
}

// NewStore creates a store persisting to the given file path. The file is
// not touched until Open.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open loads the settings file into memory and returns true on success.
// A missing file is not an error; it simply yields an empty store. Any
// other read or parse failure is logged and reported as false.
func (s *Store) Open(readOnly bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		slog.Warn("Settings store opened twice.", "path", s.path)
		return false
	}

	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First boot: nothing persisted yet.
	case err != nil:
		slog.Warn("Couldn't read settings file.", "path", s.path, "error", err)
		return false
	default:
		if err := yaml.Unmarshal(data, &values); err != nil {
			slog.Warn("Couldn't parse settings file.", "path", s.path, "error", err)
			return false
		}
		if values == nil {
			values = make(map[string]string)
		}
	}

	s.values = values
	s.open = true
	s.readOnly = readOnly
	return true
}

// Close ends the session. Writable sessions flush the in-memory values
// back to disk; a flush failure is logged but cannot be reported to the
// caller, matching the best-effort contract of the device settings.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return
	}
	s.open = false

	if s.readOnly {
		return
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		slog.Error("Couldn't serialize settings.", "path", s.path, "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		slog.Error("Couldn't create settings directory.", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		slog.Error("Couldn't write settings file.", "path", s.path, "error", err)
	}
}

// PluginInstallationRecord returns the persisted slot-to-plugin record,
// or the empty string when none was saved. Valid only while open.
func (s *Store) PluginInstallationRecord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[keyPluginInstallation]
}

// SetPluginInstallationRecord replaces the persisted slot-to-plugin
// record. The value reaches disk on the next writable Close.
func (s *Store) SetPluginInstallationRecord(record string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[keyPluginInstallation] = record
}
