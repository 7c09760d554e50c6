package domain

import "slices"

// LockFileVersion is the current lock file format version.
// It allows for future schema migrations and backward compatibility.
const LockFileVersion = 1

// PlatformLock is the solved package set of one environment on one
// platform, plus the fingerprint of the inputs that produced it.
type PlatformLock struct {
	// Fingerprint is the stable hash of the environment's resolved
	// requirement specs and channel list for this platform.
	Fingerprint string        `yaml:"fingerprint"`
	Conda       []CondaRecord `yaml:"conda,omitempty"`
	Pypi        []PypiRecord  `yaml:"pypi,omitempty"`
}

// EnvironmentLock is one environment's entry in the lock file.
type EnvironmentLock struct {
	Channels  []string                  `yaml:"channels"`
	Platforms map[Platform]PlatformLock `yaml:"platforms"`
}

// LockFile is the persisted result of a resolution pass: per environment,
// per platform, the ordered package lists and their provenance. It is
// created or overwritten whole by a resolution pass and never mutated
// record-by-record outside one.
type LockFile struct {
	Version      int                        `yaml:"version"`
	Environments map[string]EnvironmentLock `yaml:"environments"`
}

// NewLockFile creates an empty lock file at the current format version.
func NewLockFile() *LockFile {
	return &LockFile{
		Version:      LockFileVersion,
		Environments: make(map[string]EnvironmentLock),
	}
}

// Clone returns a copy of the lock file whose environment and platform
// maps are independent of the receiver. Record slices are shared; callers
// replace whole platform entries rather than mutating records in place.
func (l *LockFile) Clone() *LockFile {
	out := &LockFile{
		Version:      l.Version,
		Environments: make(map[string]EnvironmentLock, len(l.Environments)),
	}
	for name, env := range l.Environments {
		cloned := EnvironmentLock{
			Channels:  slices.Clone(env.Channels),
			Platforms: make(map[Platform]PlatformLock, len(env.Platforms)),
		}
		for platform, lock := range env.Platforms {
			cloned.Platforms[platform] = lock
		}
		out.Environments[name] = cloned
	}
	return out
}

// Environment returns the lock entry for the named environment.
func (l *LockFile) Environment(name string) (EnvironmentLock, bool) {
	env, ok := l.Environments[name]
	return env, ok
}

// Platform returns the lock entry for one environment on one platform.
func (l *LockFile) Platform(envName string, platform Platform) (PlatformLock, bool) {
	env, ok := l.Environments[envName]
	if !ok {
		return PlatformLock{}, false
	}
	lock, ok := env.Platforms[platform]
	return lock, ok
}

// SetPlatform stores a platform lock for an environment, creating the
// environment entry if needed.
func (l *LockFile) SetPlatform(envName string, channels []string, platform Platform, lock PlatformLock) {
	env, ok := l.Environments[envName]
	if !ok {
		env = EnvironmentLock{
			Channels:  slices.Clone(channels),
			Platforms: make(map[Platform]PlatformLock),
		}
	}
	env.Platforms[platform] = lock
	l.Environments[envName] = env
}

// Contains reports whether the lock holds a package in the given ecosystem
// for the environment and platform that satisfies the requirement spec.
// It is a pure query: no solver runs and the lock is not modified.
func (l *LockFile) Contains(envName string, platform Platform, spec RequirementSpec) bool {
	lock, ok := l.Platform(envName, platform)
	if !ok {
		return false
	}

	switch spec.Ecosystem {
	case EcosystemPypi:
		want := NormalizePackageName(spec.Name.String())
		for _, record := range lock.Pypi {
			if NormalizePackageName(record.Name.String()) != want {
				continue
			}
			v, err := ParseVersion(record.Version)
			if err != nil {
				continue
			}
			if spec.Constraint.Matches(v) {
				return true
			}
		}
	default:
		for _, record := range lock.Conda {
			if record.Name != spec.Name {
				continue
			}
			v, err := ParseVersion(record.Version)
			if err != nil {
				continue
			}
			if spec.Matches(v, record.Build) {
				return true
			}
		}
	}

	return false
}

// ContainsMatchSpec is a convenience wrapper over Contains that parses a
// conda match-spec expression such as "foo ==2".
func (l *LockFile) ContainsMatchSpec(envName string, platform Platform, expr string) bool {
	spec, err := ParseRequirementSpec(EcosystemConda, expr)
	if err != nil {
		return false
	}
	return l.Contains(envName, platform, spec)
}

// ContainsPypi is a convenience wrapper over Contains for the language
// ecosystem.
func (l *LockFile) ContainsPypi(envName string, platform Platform, expr string) bool {
	spec, err := ParseRequirementSpec(EcosystemPypi, expr)
	if err != nil {
		return false
	}
	return l.Contains(envName, platform, spec)
}
