// Package resolve implements the lock-resolution engine: requirement
// unification per solve group, the external solver fan-out and the
// projection of group solutions down to each environment's closure.
package resolve

import (
	"context"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
)

// Unifier merges the requirement specs of every member environment of a
// solve group and invokes the external solver once per (group, platform).
type Unifier struct {
	solver ports.Solver
}

// NewUnifier creates a Unifier over the given solver capability.
func NewUnifier(solver ports.Solver) *Unifier {
	return &Unifier{solver: solver}
}

// UnionSpecs builds the union requirement set of a solve group for one
// ecosystem: every member environment's post-feature-activation specs are
// concatenated in member order, and duplicate package names keep the
// conjunction of all constraints. A package appearing in two environments'
// requirement sets is therefore solved once, so both receive the same
// version.
func UnionSpecs(m *domain.Manifest, group domain.SolveGroup, eco domain.Ecosystem) ([]domain.RequirementSpec, error) {
	var union []domain.RequirementSpec
	index := make(map[domain.InternedString]int)

	for _, envName := range group.Environments {
		specs, err := m.EnvironmentSpecs(envName, eco)
		if err != nil {
			return nil, zerr.With(err, "solve_group", group.Name.String())
		}
		for _, spec := range specs {
			if i, seen := index[spec.Name]; seen {
				if !union[i].Constraint.Intersects(spec.Constraint) {
					err := zerr.With(domain.ErrUnsatisfiable, "package", spec.Name.String())
					err = zerr.With(err, "conflicting_specs", []string{union[i].String(), spec.String()})
					return nil, zerr.With(err, "solve_group", group.Name.String())
				}
				union[i] = union[i].And(spec)
				continue
			}
			index[spec.Name] = len(union)
			union = append(union, spec)
		}
	}

	return union, nil
}

// GroupSolution is the superset solution of one (solve group, platform)
// pair: the records satisfying the union of every member's requirements.
type GroupSolution struct {
	Group    domain.SolveGroup
	Platform domain.Platform
	Conda    []domain.CondaRecord
	Pypi     []domain.PypiRecord
	// HasPypi records whether the group's union requirement set included
	// any language-ecosystem spec; purl reconciliation only runs when it
	// did.
	HasPypi bool
}

// Solve produces exactly one superset solution for the given group and
// platform. It has no side effects beyond the returned solution; the lock
// store is never written here.
func (u *Unifier) Solve(ctx context.Context, m *domain.Manifest, group domain.SolveGroup, platform domain.Platform, db *domain.PackageDatabase) (*GroupSolution, error) {
	condaSpecs, err := UnionSpecs(m, group, domain.EcosystemConda)
	if err != nil {
		return nil, err
	}
	pypiSpecs, err := UnionSpecs(m, group, domain.EcosystemPypi)
	if err != nil {
		return nil, err
	}

	solution := &GroupSolution{
		Group:    group,
		Platform: platform,
		HasPypi:  len(pypiSpecs) > 0,
	}

	solution.Conda, err = u.solver.SolveConda(ctx, platform, db, condaSpecs)
	if err != nil {
		err = zerr.With(err, "solve_group", group.Name.String())
		return nil, zerr.With(err, "platform", platform.String())
	}

	// A pypi requirement already satisfied by a solved conda record stays on
	// the conda side and is not solved again in the language ecosystem.
	remaining := withoutCondaProvided(pypiSpecs, solution.Conda)
	if len(remaining) > 0 {
		solution.Pypi, err = u.solver.SolvePypi(ctx, platform, db, remaining)
		if err != nil {
			err = zerr.With(err, "solve_group", group.Name.String())
			return nil, zerr.With(err, "platform", platform.String())
		}
	}

	return solution, nil
}

func withoutCondaProvided(specs []domain.RequirementSpec, conda []domain.CondaRecord) []domain.RequirementSpec {
	if len(specs) == 0 {
		return nil
	}
	provided := make(map[string]bool, len(conda))
	for _, record := range conda {
		provided[domain.NormalizePackageName(record.Name.String())] = true
	}

	var out []domain.RequirementSpec
	for _, spec := range specs {
		if provided[domain.NormalizePackageName(spec.Name.String())] {
			continue
		}
		out = append(out, spec)
	}
	return out
}
