// Package lockstore persists the lock file as YAML on disk.
package lockstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the lock file name written next to the manifest.
const DefaultFilename = "lox.lock"

var _ ports.LockStore = (*Store)(nil)

// Store implements ports.LockStore using a single YAML file. Commits write
// to a temporary file in the same directory and rename it over the target,
// so readers never observe a partially written lock.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a lock store backed by the file at the given path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Load reads the persisted lock file. A missing file yields an empty lock,
// not an error.
func (s *Store) Load() (*domain.LockFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewLockFile(), nil
		}
		return nil, zerr.Wrap(err, domain.ErrLockReadFailed.Error())
	}

	lock := domain.NewLockFile()
	if len(data) == 0 {
		return lock, nil
	}
	if err := yaml.Unmarshal(data, lock); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLockParseFailed.Error())
	}
	if lock.Environments == nil {
		lock.Environments = make(map[string]domain.EnvironmentLock)
	}
	return lock, nil
}

// Commit atomically replaces the persisted lock file.
func (s *Store) Commit(lock *domain.LockFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(lock)
	if err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, domain.ErrLockWriteFailed.Error())
	}
	return nil
}
