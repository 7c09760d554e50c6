package resolve

import (
	"slices"
	"strings"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/zerr"
)

// Projector filters a group's superset solution down to the exact closure
// one environment needs. It never re-solves: every selected package keeps
// the version and build the unifier's solver chose, which is what yields
// group-wide version equality for shared packages.
type Projector struct{}

// NewProjector creates a Projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Projection is one environment's slice of a group solution on one
// platform, ordered by package name.
type Projection struct {
	Environment string
	Platform    domain.Platform
	Conda       []domain.CondaRecord
	Pypi        []domain.PypiRecord
}

// condaGraph is an arena of conda record identities with index-based
// dependency edges. Reachability is computed with an explicit visited set
// rather than recursive traversal, so deep or cyclic dependency graphs
// terminate trivially.
type condaGraph struct {
	records []domain.CondaRecord
	byName  map[string]int
	edges   [][]int
}

func newCondaGraph(records []domain.CondaRecord) *condaGraph {
	g := &condaGraph{
		records: records,
		byName:  make(map[string]int, len(records)),
		edges:   make([][]int, len(records)),
	}
	for i, record := range records {
		g.byName[record.Name.String()] = i
	}
	for i, record := range records {
		for _, dep := range record.Depends {
			if j, ok := g.byName[dependencyName(dep)]; ok {
				g.edges[i] = append(g.edges[i], j)
			}
		}
	}
	return g
}

// reach returns the indices reachable from the given roots.
func (g *condaGraph) reach(roots []int) map[int]bool {
	visited := make(map[int]bool, len(roots))
	queue := slices.Clone(roots)
	for _, root := range roots {
		visited[root] = true
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.edges[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	return visited
}

// dependencyName extracts the package name from a dependency expression
// such as "foo <3" or "foo".
func dependencyName(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Project computes the minimal package set of one environment from its
// group's superset solution. Only the environment's own activated-feature
// specs seed the traversal; packages other group members need but this
// environment's closure does not reach are excluded.
//
// A direct requirement with no matching record in the superset solution is
// an internal consistency violation: the unifier must have included it.
func (p *Projector) Project(m *domain.Manifest, envName string, solution *GroupSolution) (*Projection, error) {
	condaSpecs, err := m.EnvironmentSpecs(envName, domain.EcosystemConda)
	if err != nil {
		return nil, err
	}
	pypiSpecs, err := m.EnvironmentSpecs(envName, domain.EcosystemPypi)
	if err != nil {
		return nil, err
	}

	projection := &Projection{
		Environment: envName,
		Platform:    solution.Platform,
	}

	graph := newCondaGraph(solution.Conda)
	roots := make([]int, 0, len(condaSpecs))
	for _, spec := range condaSpecs {
		i, ok := graph.byName[spec.Name.String()]
		if !ok {
			err := zerr.With(domain.ErrInternalConsistency, "requirement", spec.String())
			err = zerr.With(err, "environment", envName)
			return nil, zerr.With(err, "platform", solution.Platform.String())
		}
		roots = append(roots, i)
	}

	for i := range graph.reach(roots) {
		projection.Conda = append(projection.Conda, graph.records[i])
	}
	slices.SortFunc(projection.Conda, func(a, b domain.CondaRecord) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})

	projection.Pypi, err = p.projectPypi(envName, pypiSpecs, solution, projection.Conda)
	if err != nil {
		return nil, err
	}

	return projection, nil
}

// projectPypi computes the environment's language-ecosystem closure. A
// requirement already satisfied by a conda record in the environment's
// projected set stays on the conda side and produces no pypi entry.
func (p *Projector) projectPypi(envName string, specs []domain.RequirementSpec, solution *GroupSolution, conda []domain.CondaRecord) ([]domain.PypiRecord, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	condaProvided := make(map[string]bool, len(conda))
	for _, record := range conda {
		condaProvided[domain.NormalizePackageName(record.Name.String())] = true
	}

	byName := make(map[string]int, len(solution.Pypi))
	for i, record := range solution.Pypi {
		byName[domain.NormalizePackageName(record.Name.String())] = i
	}

	visited := make(map[int]bool)
	var queue []int
	for _, spec := range specs {
		name := domain.NormalizePackageName(spec.Name.String())
		if condaProvided[name] {
			continue
		}
		i, ok := byName[name]
		if !ok {
			err := zerr.With(domain.ErrInternalConsistency, "requirement", spec.String())
			err = zerr.With(err, "environment", envName)
			return nil, zerr.With(err, "platform", solution.Platform.String())
		}
		if !visited[i] {
			visited[i] = true
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range solution.Pypi[current].Depends {
			name := domain.NormalizePackageName(dependencyName(dep))
			if condaProvided[name] {
				continue
			}
			if i, ok := byName[name]; ok && !visited[i] {
				visited[i] = true
				queue = append(queue, i)
			}
		}
	}

	var out []domain.PypiRecord
	for i := range visited {
		out = append(out, solution.Pypi[i])
	}
	slices.SortFunc(out, func(a, b domain.PypiRecord) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return out, nil
}
