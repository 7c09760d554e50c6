package resolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports/mocks"
	"go.trai.ch/lox/internal/engine/resolve"
	"go.uber.org/mock/gomock"
)

func mustSpec(t *testing.T, eco domain.Ecosystem, expr string) domain.RequirementSpec {
	t.Helper()
	spec, err := domain.ParseRequirementSpec(eco, expr)
	require.NoError(t, err)
	return spec
}

func condaRecord(name, version string, depends ...string) domain.CondaRecord {
	return domain.CondaRecord{
		Name:    domain.NewInternedString(name),
		Version: version,
		Build:   "0",
		Channel: "main",
		Depends: depends,
	}
}

// groupedTestManifest builds two environments sharing solve group "grp":
// "app" requires foo (conda) and "dev" requires foo <3 plus bar (conda) and
// requests (pypi).
func groupedTestManifest(t *testing.T) *domain.Manifest {
	t.Helper()
	return &domain.Manifest{
		Name:      "demo",
		Channels:  []string{"main"},
		Platforms: []domain.Platform{domain.PlatformLinux64},
		Features: map[string]domain.Feature{
			domain.DefaultFeatureName: {
				Name: domain.NewInternedString(domain.DefaultFeatureName),
				Requirements: map[domain.Ecosystem][]domain.RequirementSpec{
					domain.EcosystemConda: {mustSpec(t, domain.EcosystemConda, "foo")},
				},
			},
			"dev": {
				Name: domain.NewInternedString("dev"),
				Requirements: map[domain.Ecosystem][]domain.RequirementSpec{
					domain.EcosystemConda: {
						mustSpec(t, domain.EcosystemConda, "foo <3"),
						mustSpec(t, domain.EcosystemConda, "bar"),
					},
					domain.EcosystemPypi: {mustSpec(t, domain.EcosystemPypi, "requests")},
				},
			},
		},
		Environments: map[string]domain.Environment{
			"app": {Name: domain.NewInternedString("app"), SolveGroup: "grp"},
			"dev": {
				Name:       domain.NewInternedString("dev"),
				Features:   []string{"dev"},
				SolveGroup: "grp",
			},
		},
	}
}

func derivedGroup(t *testing.T, m *domain.Manifest, name string) domain.SolveGroup {
	t.Helper()
	groups, err := m.DeriveSolveGroups()
	require.NoError(t, err)
	for _, group := range groups {
		if group.Name.String() == name {
			return group
		}
	}
	t.Fatalf("group %q not derived", name)
	return domain.SolveGroup{}
}

func TestUnionSpecs(t *testing.T) {
	m := groupedTestManifest(t)
	group := derivedGroup(t, m, "grp")

	union, err := resolve.UnionSpecs(m, group, domain.EcosystemConda)
	require.NoError(t, err)

	// foo from both members folds into one spec carrying every constraint;
	// bar appears once.
	require.Len(t, union, 2)
	byName := make(map[string]domain.RequirementSpec, len(union))
	for _, spec := range union {
		byName[spec.Name.String()] = spec
	}

	foo := byName["foo"]
	assert.True(t, foo.Matches(domain.MustParseVersion("2"), ""))
	assert.False(t, foo.Matches(domain.MustParseVersion("3"), ""), "the tighter member constraint must hold in the union")

	_, hasBar := byName["bar"]
	assert.True(t, hasBar)
}

func TestUnionSpecsReportsDefiniteConflictEarly(t *testing.T) {
	m := groupedTestManifest(t)
	m.Features["dev"].Requirements[domain.EcosystemConda][0] = mustSpec(t, domain.EcosystemConda, "foo >=3")
	m.Features[domain.DefaultFeatureName].Requirements[domain.EcosystemConda][0] = mustSpec(t, domain.EcosystemConda, "foo <3")
	group := derivedGroup(t, m, "grp")

	_, err := resolve.UnionSpecs(m, group, domain.EcosystemConda)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsatisfiable)
}

func TestUnifierSolveCallsSolverOncePerEcosystem(t *testing.T) {
	ctrl := gomock.NewController(t)
	solver := mocks.NewMockSolver(ctrl)

	m := groupedTestManifest(t)
	group := derivedGroup(t, m, "grp")
	db := domain.NewPackageDatabase("main")

	condaResult := []domain.CondaRecord{
		condaRecord("foo", "2"),
		condaRecord("bar", "1", "foo <3"),
	}
	pypiResult := []domain.PypiRecord{
		{Name: domain.NewInternedString("requests"), Version: "2.31.0"},
	}

	solver.EXPECT().
		SolveConda(gomock.Any(), domain.PlatformLinux64, db, gomock.Any()).
		Return(condaResult, nil).
		Times(1)
	solver.EXPECT().
		SolvePypi(gomock.Any(), domain.PlatformLinux64, db, gomock.Any()).
		Return(pypiResult, nil).
		Times(1)

	u := resolve.NewUnifier(solver)
	solution, err := u.Solve(context.Background(), m, group, domain.PlatformLinux64, db)
	require.NoError(t, err)

	assert.Equal(t, condaResult, solution.Conda)
	assert.Equal(t, pypiResult, solution.Pypi)
	assert.True(t, solution.HasPypi)
}

func TestUnifierSolveSkipsPypiWithoutSpecs(t *testing.T) {
	ctrl := gomock.NewController(t)
	solver := mocks.NewMockSolver(ctrl)

	m := groupedTestManifest(t)
	delete(m.Features["dev"].Requirements, domain.EcosystemPypi)
	group := derivedGroup(t, m, "grp")
	db := domain.NewPackageDatabase("main")

	solver.EXPECT().
		SolveConda(gomock.Any(), domain.PlatformLinux64, db, gomock.Any()).
		Return([]domain.CondaRecord{condaRecord("foo", "2"), condaRecord("bar", "1")}, nil)

	u := resolve.NewUnifier(solver)
	solution, err := u.Solve(context.Background(), m, group, domain.PlatformLinux64, db)
	require.NoError(t, err)
	assert.False(t, solution.HasPypi)
	assert.Empty(t, solution.Pypi)
}

func TestUnifierSolveSkipsCondaProvidedPypiSpecs(t *testing.T) {
	ctrl := gomock.NewController(t)
	solver := mocks.NewMockSolver(ctrl)

	m := groupedTestManifest(t)
	feature := m.Features["dev"]
	feature.Requirements[domain.EcosystemPypi] = []domain.RequirementSpec{
		mustSpec(t, domain.EcosystemPypi, "foo"),
	}
	m.Features["dev"] = feature
	group := derivedGroup(t, m, "grp")
	db := domain.NewPackageDatabase("main")

	// foo is solved on the conda side, so the pypi solver is never invoked
	// even though the union carried a pypi spec.
	solver.EXPECT().
		SolveConda(gomock.Any(), domain.PlatformLinux64, db, gomock.Any()).
		Return([]domain.CondaRecord{condaRecord("foo", "2"), condaRecord("bar", "1")}, nil)

	u := resolve.NewUnifier(solver)
	solution, err := u.Solve(context.Background(), m, group, domain.PlatformLinux64, db)
	require.NoError(t, err)
	assert.True(t, solution.HasPypi, "reconciliation still applies when the union included a language-ecosystem spec")
	assert.Empty(t, solution.Pypi)
}

func TestUnifierSolveError(t *testing.T) {
	ctrl := gomock.NewController(t)
	solver := mocks.NewMockSolver(ctrl)

	m := groupedTestManifest(t)
	group := derivedGroup(t, m, "grp")
	db := domain.NewPackageDatabase("main")

	solver.EXPECT().
		SolveConda(gomock.Any(), domain.PlatformLinux64, db, gomock.Any()).
		Return(nil, domain.ErrUnsatisfiable)

	u := resolve.NewUnifier(solver)
	_, err := u.Solve(context.Background(), m, group, domain.PlatformLinux64, db)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsatisfiable)
}
