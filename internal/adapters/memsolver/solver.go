// Package memsolver implements the solver capability over an in-memory
// package database. It backs offline operation and the integration tests;
// production deployments plug a full SAT-based solver into the same port.
package memsolver

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Solver = (*Solver)(nil)

// Solver selects, for every required package, the highest version
// satisfying the conjunction of all constraints accumulated so far, then
// folds the selected records' own dependency constraints back in and
// repeats until the selection is stable. Constraints only ever tighten, so
// the iteration reaches a fixpoint.
type Solver struct{}

// New creates a Solver.
func New() *Solver {
	return &Solver{}
}

type constraintSet struct {
	// specs accumulates every constraint seen per package name. All of them
	// must hold simultaneously.
	specs map[string][]domain.RequirementSpec
	// order preserves first-seen order of package names for deterministic
	// iteration.
	order []string
}

func newConstraintSet(specs []domain.RequirementSpec) *constraintSet {
	set := &constraintSet{specs: make(map[string][]domain.RequirementSpec)}
	for _, spec := range specs {
		set.add(spec)
	}
	return set
}

// add records a constraint and reports whether it was not yet present.
func (c *constraintSet) add(spec domain.RequirementSpec) bool {
	name := spec.Name.String()
	for _, existing := range c.specs[name] {
		if existing.String() == spec.String() && existing.Ecosystem == spec.Ecosystem {
			return false
		}
	}
	if len(c.specs[name]) == 0 {
		c.order = append(c.order, name)
	}
	c.specs[name] = append(c.specs[name], spec)
	return true
}

func (c *constraintSet) describe(name string) []string {
	out := make([]string, 0, len(c.specs[name]))
	for _, spec := range c.specs[name] {
		out = append(out, spec.String())
	}
	return out
}

// SolveConda resolves the requirement specs against the database for one
// platform, including noarch records.
func (s *Solver) SolveConda(ctx context.Context, platform domain.Platform, db *domain.PackageDatabase, specs []domain.RequirementSpec) ([]domain.CondaRecord, error) {
	constraints := newConstraintSet(specs)
	selected := make(map[string]domain.CondaRecord)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for _, name := range constraints.order {
			record, err := s.pickConda(platform, db, name, constraints)
			if err != nil {
				return nil, err
			}
			if prev, ok := selected[name]; !ok || prev.Key() != record.Key() {
				selected[name] = record
				changed = true
			}
		}

		for _, name := range slices.Clone(constraints.order) {
			record := selected[name]
			for _, dep := range record.Depends {
				spec, err := domain.ParseRequirementSpec(domain.EcosystemConda, dep)
				if err != nil {
					err = zerr.With(err, "package", name)
					return nil, zerr.With(err, "dependency", dep)
				}
				if constraints.add(spec) {
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	out := make([]domain.CondaRecord, 0, len(selected))
	for _, name := range constraints.order {
		out = append(out, selected[name])
	}
	slices.SortFunc(out, func(a, b domain.CondaRecord) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return out, nil
}

func (s *Solver) pickConda(platform domain.Platform, db *domain.PackageDatabase, name string, constraints *constraintSet) (domain.CondaRecord, error) {
	var best domain.CondaRecord
	var bestVersion domain.Version
	found := false

	for _, candidate := range db.CondaCandidates(platform, name) {
		v, err := domain.ParseVersion(candidate.Version)
		if err != nil {
			continue
		}
		if !s.satisfiesAll(constraints.specs[name], v, candidate.Build) {
			continue
		}
		if !found || v.Compare(bestVersion) > 0 ||
			(v.Compare(bestVersion) == 0 && candidate.Build > best.Build) {
			best, bestVersion, found = candidate, v, true
		}
	}

	if !found {
		err := zerr.With(domain.ErrUnsatisfiable, "package", name)
		err = zerr.With(err, "platform", platform.String())
		return domain.CondaRecord{}, zerr.With(err, "constraints", constraints.describe(name))
	}
	return best, nil
}

func (s *Solver) satisfiesAll(specs []domain.RequirementSpec, v domain.Version, build string) bool {
	for _, spec := range specs {
		if !spec.Matches(v, build) {
			return false
		}
	}
	return true
}

// SolvePypi resolves language-ecosystem requirement specs against the
// database's pypi index with the same tightening loop.
func (s *Solver) SolvePypi(ctx context.Context, platform domain.Platform, db *domain.PackageDatabase, specs []domain.RequirementSpec) ([]domain.PypiRecord, error) {
	constraints := newConstraintSet(specs)
	selected := make(map[string]domain.PypiRecord)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for _, name := range constraints.order {
			record, err := s.pickPypi(platform, db, name, constraints)
			if err != nil {
				return nil, err
			}
			if prev, ok := selected[name]; !ok || prev.Key() != record.Key() {
				selected[name] = record
				changed = true
			}
		}

		for _, name := range slices.Clone(constraints.order) {
			record := selected[name]
			for _, dep := range record.Depends {
				spec, err := domain.ParseRequirementSpec(domain.EcosystemPypi, dep)
				if err != nil {
					err = zerr.With(err, "package", name)
					return nil, zerr.With(err, "dependency", dep)
				}
				if constraints.add(spec) {
					changed = true
				}
			}
		}

		if !changed {
			break
		}
	}

	out := make([]domain.PypiRecord, 0, len(selected))
	for _, name := range constraints.order {
		out = append(out, selected[name])
	}
	slices.SortFunc(out, func(a, b domain.PypiRecord) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return out, nil
}

func (s *Solver) pickPypi(platform domain.Platform, db *domain.PackageDatabase, name string, constraints *constraintSet) (domain.PypiRecord, error) {
	var best domain.PypiRecord
	var bestVersion domain.Version
	found := false

	for _, candidate := range db.Pypi[domain.NormalizePackageName(name)] {
		v, err := domain.ParseVersion(candidate.Version)
		if err != nil {
			continue
		}
		if !s.satisfiesAll(constraints.specs[name], v, "") {
			continue
		}
		if !found || v.Compare(bestVersion) > 0 {
			best, bestVersion, found = candidate, v, true
		}
	}

	if !found {
		err := zerr.With(domain.ErrUnsatisfiable, "package", name)
		err = zerr.With(err, "platform", platform.String())
		return domain.PypiRecord{}, zerr.With(err, "constraints", constraints.describe(name))
	}
	return best, nil
}
