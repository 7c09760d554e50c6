package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/core/domain"
)

func mustSpec(t *testing.T, eco domain.Ecosystem, expr string) domain.RequirementSpec {
	t.Helper()
	spec, err := domain.ParseRequirementSpec(eco, expr)
	require.NoError(t, err)
	return spec
}

func testManifest(t *testing.T) *domain.Manifest {
	t.Helper()
	return &domain.Manifest{
		Name:      "demo",
		Channels:  []string{"file:///channels/main"},
		Platforms: []domain.Platform{domain.PlatformLinux64},
		Features: map[string]domain.Feature{
			domain.DefaultFeatureName: {
				Name: domain.NewInternedString(domain.DefaultFeatureName),
				Requirements: map[domain.Ecosystem][]domain.RequirementSpec{
					domain.EcosystemConda: {mustSpec(t, domain.EcosystemConda, "foo")},
				},
			},
			"prod": {
				Name: domain.NewInternedString("prod"),
				Requirements: map[domain.Ecosystem][]domain.RequirementSpec{
					domain.EcosystemConda: {mustSpec(t, domain.EcosystemConda, "foo <3")},
				},
			},
			"test": {
				Name: domain.NewInternedString("test"),
				Requirements: map[domain.Ecosystem][]domain.RequirementSpec{
					domain.EcosystemConda: {mustSpec(t, domain.EcosystemConda, "bar")},
				},
			},
		},
		Environments: map[string]domain.Environment{
			domain.DefaultEnvironmentName: {
				Name: domain.NewInternedString(domain.DefaultEnvironmentName),
			},
			"prod": {
				Name:       domain.NewInternedString("prod"),
				Features:   []string{"prod"},
				SolveGroup: "prod",
			},
			"test": {
				Name:       domain.NewInternedString("test"),
				Features:   []string{"prod", "test"},
				SolveGroup: "prod",
			},
		},
	}
}

func TestManifestEnvironment(t *testing.T) {
	m := testManifest(t)

	env, err := m.Environment("prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", env.Name.String())

	_, err = m.Environment("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownEnvironment)
}

func TestManifestEnvironmentNames(t *testing.T) {
	m := testManifest(t)
	assert.Equal(t, []string{"default", "prod", "test"}, m.EnvironmentNames())
}

func TestEnvironmentSpecs(t *testing.T) {
	m := testManifest(t)

	t.Run("default feature comes first", func(t *testing.T) {
		specs, err := m.EnvironmentSpecs("test", domain.EcosystemConda)
		require.NoError(t, err)
		require.Len(t, specs, 2)
		assert.Equal(t, "foo", specs[0].Name.String())
		assert.Equal(t, "bar", specs[1].Name.String())
	})

	t.Run("duplicate names fold constraints", func(t *testing.T) {
		// "foo" appears in default (unconstrained) and prod ("<3"); the
		// folded spec must enforce the tighter bound.
		specs, err := m.EnvironmentSpecs("prod", domain.EcosystemConda)
		require.NoError(t, err)
		require.Len(t, specs, 1)
		assert.True(t, specs[0].Matches(domain.MustParseVersion("2"), ""))
		assert.False(t, specs[0].Matches(domain.MustParseVersion("3"), ""))
	})

	t.Run("unknown feature", func(t *testing.T) {
		m := testManifest(t)
		env := m.Environments["prod"]
		env.Features = []string{"ghost"}
		m.Environments["prod"] = env

		_, err := m.EnvironmentSpecs("prod", domain.EcosystemConda)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownFeature)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := m.EnvironmentSpecs("ghost", domain.EcosystemConda)
		assert.ErrorIs(t, err, domain.ErrUnknownEnvironment)
	})
}

func TestSolveGroupOf(t *testing.T) {
	m := testManifest(t)

	t.Run("shared group lists all members", func(t *testing.T) {
		name, members := m.SolveGroupOf("test")
		assert.Equal(t, "prod", name)
		assert.Equal(t, []string{"prod", "test"}, members)
	})

	t.Run("undeclared group is a singleton", func(t *testing.T) {
		name, members := m.SolveGroupOf("default")
		assert.Equal(t, "default", name)
		assert.Equal(t, []string{"default"}, members)
	})
}

func TestDeriveSolveGroups(t *testing.T) {
	t.Run("membership and singletons", func(t *testing.T) {
		m := testManifest(t)
		groups, err := m.DeriveSolveGroups()
		require.NoError(t, err)
		require.Len(t, groups, 2)

		// Sorted by group name: "default" singleton, then "prod".
		assert.Equal(t, "default", groups[0].Name.String())
		assert.Equal(t, []string{"default"}, groups[0].Environments)

		assert.Equal(t, "prod", groups[1].Name.String())
		assert.Equal(t, []string{"prod", "test"}, groups[1].Environments)
	})

	t.Run("platform fallback to project platforms", func(t *testing.T) {
		m := testManifest(t)
		groups, err := m.DeriveSolveGroups()
		require.NoError(t, err)
		for _, group := range groups {
			assert.Equal(t, []domain.Platform{domain.PlatformLinux64}, group.Platforms)
		}
	})

	t.Run("membership recomputed after environment change", func(t *testing.T) {
		m := testManifest(t)
		env := m.Environments["test"]
		env.SolveGroup = ""
		m.Environments["test"] = env

		groups, err := m.DeriveSolveGroups()
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, []string{"prod"}, groups[1].Environments)
		assert.Equal(t, []string{"test"}, groups[2].Environments)
	})

	t.Run("platform mismatch within group", func(t *testing.T) {
		m := testManifest(t)
		env := m.Environments["test"]
		env.Platforms = []domain.Platform{domain.PlatformOsxArm64}
		m.Environments["test"] = env

		_, err := m.DeriveSolveGroups()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSolveGroupPlatformMismatch)
	})
}
