package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// DefaultFeatureName is the implicit feature holding the project's base
// dependency set. Every environment activates it first.
const DefaultFeatureName = "default"

// DefaultEnvironmentName is the implicit environment that exists in every
// project and activates only the default feature.
const DefaultEnvironmentName = "default"

// Feature is a named group of requirement specs per ecosystem. Features are
// pure data; environments reference them by name without copying.
type Feature struct {
	Name         InternedString
	Requirements map[Ecosystem][]RequirementSpec
}

// Specs returns the feature's requirement specs for one ecosystem.
func (f Feature) Specs(eco Ecosystem) []RequirementSpec {
	return f.Requirements[eco]
}

// Environment is a named composition of features targeting a set of
// platforms. An environment without a declared solve group forms its own
// singleton group.
type Environment struct {
	Name InternedString
	// Features lists the activated feature names in declaration order,
	// excluding the implicit default feature.
	Features []string
	// SolveGroup is empty for environments that solve independently.
	SolveGroup string
	Platforms  []Platform
}

// SolveGroup is the derived unit of unified solving: its member
// environments' overlapping requirements resolve to identical versions.
// Membership is recomputed from the environment set at the start of every
// resolution pass and never persisted.
type SolveGroup struct {
	Name InternedString
	// Environments holds member environment names, sorted.
	Environments []string
	Platforms    []Platform
}

// Manifest is the read-only requirement model derived from the project
// manifest: channels, platforms, features and environments.
type Manifest struct {
	Name         string
	Channels     []string
	Platforms    []Platform
	Features     map[string]Feature
	Environments map[string]Environment
}

// Environment returns the named environment.
func (m *Manifest) Environment(name string) (Environment, error) {
	env, ok := m.Environments[name]
	if !ok {
		return Environment{}, zerr.With(ErrUnknownEnvironment, "environment", name)
	}
	return env, nil
}

// EnvironmentNames returns all environment names, sorted.
func (m *Manifest) EnvironmentNames() []string {
	names := make([]string, 0, len(m.Environments))
	for name := range m.Environments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EnvironmentSpecs resolves the post-feature-activation requirement specs
// of one environment for one ecosystem. The default feature's specs come
// first, then each activated feature's specs in declaration order.
// Duplicate package names are folded into a single spec whose constraints
// all hold simultaneously.
func (m *Manifest) EnvironmentSpecs(envName string, eco Ecosystem) ([]RequirementSpec, error) {
	env, err := m.Environment(envName)
	if err != nil {
		return nil, err
	}

	featureNames := make([]string, 0, len(env.Features)+1)
	featureNames = append(featureNames, DefaultFeatureName)
	featureNames = append(featureNames, env.Features...)

	var specs []RequirementSpec
	index := make(map[InternedString]int)
	for _, fname := range featureNames {
		feature, ok := m.Features[fname]
		if !ok {
			if fname == DefaultFeatureName {
				continue
			}
			err := zerr.With(ErrUnknownFeature, "feature", fname)
			return nil, zerr.With(err, "environment", envName)
		}
		for _, spec := range feature.Specs(eco) {
			if i, seen := index[spec.Name]; seen {
				specs[i] = specs[i].And(spec)
				continue
			}
			index[spec.Name] = len(specs)
			specs = append(specs, spec)
		}
	}

	return specs, nil
}

// SolveGroupOf returns the derived solve-group name of an environment
// together with the group's sorted member list. Environments without a
// declared group form singleton groups named after themselves, matching
// DeriveSolveGroups.
func (m *Manifest) SolveGroupOf(envName string) (string, []string) {
	groupName := envName
	if env, ok := m.Environments[envName]; ok && env.SolveGroup != "" {
		groupName = env.SolveGroup
	}

	var members []string
	for name, env := range m.Environments {
		group := env.SolveGroup
		if group == "" {
			group = name
		}
		if group == groupName {
			members = append(members, name)
		}
	}
	slices.Sort(members)
	return groupName, members
}

// DeriveSolveGroups recomputes solve-group membership from the current
// environment set. Environments with no declared group become singleton
// groups named after themselves. Every member of a shared group must target
// the same platform set.
func (m *Manifest) DeriveSolveGroups() ([]SolveGroup, error) {
	members := make(map[string][]string)
	for name, env := range m.Environments {
		group := env.SolveGroup
		if group == "" {
			group = name
		}
		members[group] = append(members[group], name)
	}

	groupNames := make([]string, 0, len(members))
	for name := range members {
		groupNames = append(groupNames, name)
	}
	slices.Sort(groupNames)

	groups := make([]SolveGroup, 0, len(groupNames))
	for _, name := range groupNames {
		envNames := members[name]
		slices.Sort(envNames)

		platforms := m.environmentPlatforms(envNames[0])
		for _, envName := range envNames[1:] {
			other := m.environmentPlatforms(envName)
			if !slices.Equal(platforms, other) {
				err := zerr.With(ErrSolveGroupPlatformMismatch, "solve_group", name)
				err = zerr.With(err, "environment", envName)
				return nil, zerr.With(err, "expected_platforms", platformStrings(platforms))
			}
		}

		groups = append(groups, SolveGroup{
			Name:         NewInternedString(name),
			Environments: envNames,
			Platforms:    platforms,
		})
	}

	return groups, nil
}

// environmentPlatforms returns the sorted target platforms of an
// environment, falling back to the project platforms when the environment
// declares none.
func (m *Manifest) environmentPlatforms(envName string) []Platform {
	env := m.Environments[envName]
	platforms := env.Platforms
	if len(platforms) == 0 {
		platforms = m.Platforms
	}

	sorted := make([]Platform, len(platforms))
	copy(sorted, platforms)
	slices.SortFunc(sorted, func(a, b Platform) int {
		return strings.Compare(string(a), string(b))
	})
	return sorted
}

func platformStrings(platforms []Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = string(p)
	}
	return out
}
