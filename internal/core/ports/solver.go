// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/lox/internal/core/domain"
)

// Solver is the external constraint-satisfaction capability. The engine
// never solves itself; it unifies requirements, invokes the solver once per
// (solve group, platform) and projects the result.
//
// Implementations may block on network or database I/O internally. A failed
// solve affects only its own (group, platform) unit of work.
//
//go:generate go run go.uber.org/mock/mockgen -source=solver.go -destination=mocks/mock_solver.go -package=mocks
type Solver interface {
	// SolveConda produces the record set satisfying the given requirement
	// specs against the package database, or ErrUnsatisfiable naming the
	// conflicting specs.
	SolveConda(ctx context.Context, platform domain.Platform, db *domain.PackageDatabase, specs []domain.RequirementSpec) ([]domain.CondaRecord, error)

	// SolvePypi produces the locked language-ecosystem packages satisfying
	// the given requirement specs.
	SolvePypi(ctx context.Context, platform domain.Platform, db *domain.PackageDatabase, specs []domain.RequirementSpec) ([]domain.PypiRecord, error)
}
