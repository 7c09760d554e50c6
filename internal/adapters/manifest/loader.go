// Package manifest provides the project manifest loader.
package manifest

import (
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the manifest file name looked up in the working
// directory.
const DefaultFilename = "lox.yaml"

var _ ports.ManifestLoader = (*Loader)(nil)

// Loader implements ports.ManifestLoader using a YAML file.
type Loader struct {
	Filename string
}

// NewLoader creates a Loader for the default manifest file name.
func NewLoader() *Loader {
	return &Loader{Filename: DefaultFilename}
}

// Load reads the manifest from the given working directory.
func (l *Loader) Load(cwd string) (*domain.Manifest, error) {
	filename := l.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	return Load(filepath.Join(cwd, filename))
}

// Load reads a manifest file from the given path and returns the
// requirement model.
func Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestReadFailed.Error())
	}

	var file Loxfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestParseFailed.Error())
	}

	return fromFile(&file)
}

// fromFile converts the parsed manifest into the domain requirement model.
// The base dependency tables become the implicit default feature, and the
// implicit default environment always exists.
func fromFile(file *Loxfile) (*domain.Manifest, error) {
	m := &domain.Manifest{
		Name:         file.Name,
		Channels:     slices.Clone(file.Channels),
		Features:     make(map[string]domain.Feature),
		Environments: make(map[string]domain.Environment),
	}

	for _, p := range file.Platforms {
		m.Platforms = append(m.Platforms, domain.Platform(p))
	}
	if len(m.Platforms) == 0 {
		// A manifest without a platform list targets the machine it runs on.
		m.Platforms = []domain.Platform{domain.CurrentPlatform()}
	}

	base, err := buildFeature(domain.DefaultFeatureName, file.Dependencies, file.PypiDependencies)
	if err != nil {
		return nil, err
	}
	m.Features[domain.DefaultFeatureName] = base

	for name, dto := range file.Features {
		if name == domain.DefaultFeatureName {
			return nil, zerr.With(domain.ErrManifestParseFailed, "feature", name)
		}
		feature, err := buildFeature(name, dto.Dependencies, dto.PypiDependencies)
		if err != nil {
			return nil, err
		}
		m.Features[name] = feature
	}

	m.Environments[domain.DefaultEnvironmentName] = domain.Environment{
		Name: domain.NewInternedString(domain.DefaultEnvironmentName),
	}

	for name, dto := range file.Environments {
		for _, fname := range dto.Features {
			if _, ok := m.Features[fname]; !ok {
				err := zerr.With(domain.ErrUnknownFeature, "feature", fname)
				return nil, zerr.With(err, "environment", name)
			}
		}

		env := domain.Environment{
			Name:       domain.NewInternedString(name),
			Features:   slices.Clone(dto.Features),
			SolveGroup: dto.SolveGroup,
		}
		for _, p := range dto.Platforms {
			env.Platforms = append(env.Platforms, domain.Platform(p))
		}
		m.Environments[name] = env
	}

	return m, nil
}

func buildFeature(name string, conda, pypi map[string]string) (domain.Feature, error) {
	feature := domain.Feature{
		Name:         domain.NewInternedString(name),
		Requirements: make(map[domain.Ecosystem][]domain.RequirementSpec),
	}

	condaSpecs, err := buildSpecs(domain.EcosystemConda, conda)
	if err != nil {
		return domain.Feature{}, zerr.With(err, "feature", name)
	}
	pypiSpecs, err := buildSpecs(domain.EcosystemPypi, pypi)
	if err != nil {
		return domain.Feature{}, zerr.With(err, "feature", name)
	}

	if len(condaSpecs) > 0 {
		feature.Requirements[domain.EcosystemConda] = condaSpecs
	}
	if len(pypiSpecs) > 0 {
		feature.Requirements[domain.EcosystemPypi] = pypiSpecs
	}
	return feature, nil
}

// buildSpecs converts a name→constraint table into specs ordered by name,
// so feature activation order is the only source of spec ordering.
func buildSpecs(eco domain.Ecosystem, table map[string]string) ([]domain.RequirementSpec, error) {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)

	specs := make([]domain.RequirementSpec, 0, len(names))
	for _, name := range names {
		constraint, err := domain.ParseConstraint(table[name])
		if err != nil {
			return nil, zerr.With(err, "package", name)
		}
		specs = append(specs, domain.RequirementSpec{
			Ecosystem:  eco,
			Name:       domain.NewInternedString(name),
			Constraint: constraint,
		})
	}
	return specs, nil
}
