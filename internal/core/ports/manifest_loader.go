package ports

import "go.trai.ch/lox/internal/core/domain"

// ManifestLoader defines the interface for loading the requirement model.
// Manifest parsing is an external collaborator; the engine only ever sees
// the parsed, read-only domain.Manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads the manifest from the given working directory and returns
	// the requirement model.
	Load(cwd string) (*domain.Manifest, error)
}
