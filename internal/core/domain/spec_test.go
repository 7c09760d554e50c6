package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/core/domain"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		matching    []string
		nonMatching []string
	}{
		{
			name:        "wildcard matches everything",
			expr:        "*",
			matching:    []string{"0.1", "3", "99.99"},
			nonMatching: nil,
		},
		{
			name:        "exact pin",
			expr:        "==2",
			matching:    []string{"2", "2.0"},
			nonMatching: []string{"1", "3", "2.1"},
		},
		{
			name:        "bare version pins exactly",
			expr:        "2",
			matching:    []string{"2"},
			nonMatching: []string{"3"},
		},
		{
			name:        "single equals",
			expr:        "=1.2",
			matching:    []string{"1.2"},
			nonMatching: []string{"1.3"},
		},
		{
			name:        "upper bound",
			expr:        "<3",
			matching:    []string{"1", "2", "2.99"},
			nonMatching: []string{"3", "4"},
		},
		{
			name:        "range conjunction",
			expr:        ">=1.2,<2",
			matching:    []string{"1.2", "1.9"},
			nonMatching: []string{"1.1", "2", "2.1"},
		},
		{
			name:        "exclusion",
			expr:        "!=1.3",
			matching:    []string{"1.2", "1.4"},
			nonMatching: []string{"1.3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.ParseConstraint(tt.expr)
			require.NoError(t, err)

			for _, v := range tt.matching {
				assert.True(t, c.Matches(domain.MustParseVersion(v)), "expected %q to match %q", v, tt.expr)
			}
			for _, v := range tt.nonMatching {
				assert.False(t, c.Matches(domain.MustParseVersion(v)), "expected %q not to match %q", v, tt.expr)
			}
		})
	}
}

func TestParseConstraintInvalid(t *testing.T) {
	_, err := domain.ParseConstraint(">=1..2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMatchSpec)
}

func TestConstraintAnd(t *testing.T) {
	lower, err := domain.ParseConstraint(">=1.2")
	require.NoError(t, err)
	upper, err := domain.ParseConstraint("<2")
	require.NoError(t, err)

	both := lower.And(upper)
	assert.True(t, both.Matches(domain.MustParseVersion("1.5")))
	assert.False(t, both.Matches(domain.MustParseVersion("1.1")))
	assert.False(t, both.Matches(domain.MustParseVersion("2.0")))

	// Conjunction with the any-constraint changes nothing.
	assert.Equal(t, lower.String(), lower.And(domain.AnyVersion()).String())
	assert.Equal(t, lower.String(), domain.AnyVersion().And(lower).String())
}

func TestConstraintIntersects(t *testing.T) {
	tests := []struct {
		name       string
		a, b       string
		intersects bool
	}{
		{"any with any", "*", "*", true},
		{"overlapping ranges", ">=1,<3", ">=2,<4", true},
		{"disjoint ranges", "<2", ">=2", false},
		{"touching inclusive bounds", ">=2", "<=2", true},
		{"touching with strict bound", ">2", "<=2", false},
		{"pin inside range", "==2", ">=1,<3", true},
		{"pin outside range", "==3", "<3", false},
		{"conflicting pins", "==2", "==3", false},
		{"matching pins", "==2", "==2", true},
		{"pin excluded", "==2", "!=2", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := domain.ParseConstraint(tc.a)
			require.NoError(t, err)
			b, err := domain.ParseConstraint(tc.b)
			require.NoError(t, err)

			assert.Equal(t, tc.intersects, a.Intersects(b))
			assert.Equal(t, tc.intersects, b.Intersects(a))
		})
	}
}

func TestParseRequirementSpec(t *testing.T) {
	t.Run("name only", func(t *testing.T) {
		spec, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo")
		require.NoError(t, err)
		assert.Equal(t, "foo", spec.Name.String())
		assert.True(t, spec.Constraint.IsAny())
		assert.Empty(t, spec.Build)
	})

	t.Run("name and constraint", func(t *testing.T) {
		spec, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo <3")
		require.NoError(t, err)
		assert.Equal(t, "foo", spec.Name.String())
		assert.True(t, spec.Matches(domain.MustParseVersion("2"), ""))
		assert.False(t, spec.Matches(domain.MustParseVersion("3"), ""))
	})

	t.Run("name constraint and build", func(t *testing.T) {
		spec, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo ==2 build_0")
		require.NoError(t, err)
		assert.Equal(t, "build_0", spec.Build)
		assert.True(t, spec.Matches(domain.MustParseVersion("2"), "build_0"))
		assert.False(t, spec.Matches(domain.MustParseVersion("2"), "build_1"))
	})

	t.Run("empty expression", func(t *testing.T) {
		_, err := domain.ParseRequirementSpec(domain.EcosystemConda, "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidMatchSpec)
	})

	t.Run("too many fields", func(t *testing.T) {
		_, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo ==2 build_0 extra")
		assert.ErrorIs(t, err, domain.ErrInvalidMatchSpec)
	})
}

func TestRequirementSpecAnd(t *testing.T) {
	a, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo >=1")
	require.NoError(t, err)
	b, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo <3")
	require.NoError(t, err)

	merged := a.And(b)
	assert.True(t, merged.Matches(domain.MustParseVersion("2"), ""))
	assert.False(t, merged.Matches(domain.MustParseVersion("3"), ""))
	assert.False(t, merged.Matches(domain.MustParseVersion("0.9"), ""))
}

func TestRequirementSpecString(t *testing.T) {
	spec, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo >=1.2,<2")
	require.NoError(t, err)
	assert.Equal(t, "foo >=1.2,<2", spec.String())

	bare, err := domain.ParseRequirementSpec(domain.EcosystemConda, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", bare.String())
}
