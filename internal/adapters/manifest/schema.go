package manifest

// Loxfile represents the structure of the lox.yaml project manifest.
type Loxfile struct {
	Name      string   `yaml:"name"`
	Channels  []string `yaml:"channels"`
	Platforms []string `yaml:"platforms"`
	// Dependencies holds the base conda dependency set, package name to
	// constraint expression.
	Dependencies map[string]string `yaml:"dependencies"`
	// PypiDependencies holds the base language-ecosystem dependency set.
	PypiDependencies map[string]string `yaml:"pypi-dependencies"`

	Features     map[string]FeatureDTO     `yaml:"features"`
	Environments map[string]EnvironmentDTO `yaml:"environments"`
}

// FeatureDTO represents a feature declaration in the manifest.
type FeatureDTO struct {
	Dependencies     map[string]string `yaml:"dependencies"`
	PypiDependencies map[string]string `yaml:"pypi-dependencies"`
}

// EnvironmentDTO represents an environment declaration in the manifest.
type EnvironmentDTO struct {
	Features   []string `yaml:"features"`
	SolveGroup string   `yaml:"solve-group"`
	Platforms  []string `yaml:"platforms"`
}
