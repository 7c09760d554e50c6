package ports

import "go.trai.ch/lox/internal/core/domain"

// LockStore owns the persisted lock file representation. Writes from a
// resolution pass are committed as one atomic update: readers never observe
// a partially written lock file.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type LockStore interface {
	// Load reads the persisted lock file.
	// Returns an empty lock file if none exists yet.
	Load() (*domain.LockFile, error)

	// Commit atomically replaces the persisted lock file.
	Commit(lock *domain.LockFile) error
}
