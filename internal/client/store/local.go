package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Keys used by the tracker in local storage
const (
	KeyUser         = "user"
	KeyJobs         = "jobs"
	KeyActivityLogs = "activityLogs"
	KeyPendingLogs  = "pendingLogs"
	KeyTheme        = "theme"
)

// LocalStorage is a small key/value store, one JSON document per key
type LocalStorage struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewLocalStorage creates a LocalStorage rooted at dir on the given filesystem
func NewLocalStorage(fsys afero.Fs, dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &LocalStorage{fs: fsys, dir: dir}, nil
}

func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load decodes the value stored under key into v.
// It reports false when nothing is stored under key.
func (s *LocalStorage) Load(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Save replaces the value stored under key
func (s *LocalStorage) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *LocalStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
