package domain

import (
	"slices"
	"strings"
)

// NormalizePackageName canonicalizes a language-ecosystem project name:
// lowercase, with runs of "-", "_" and "." collapsed to a single "-".
func NormalizePackageName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastDash := false
	for _, r := range strings.ToLower(name) {
		if r == '-' || r == '_' || r == '.' {
			if !lastDash {
				b.WriteByte('-')
			}
			lastDash = true
			continue
		}
		lastDash = false
		b.WriteRune(r)
	}
	return b.String()
}

// CondaRecord is one solved conda-side package. Its identity is the
// (name, version, build, channel) tuple; purls are identity metadata added
// after solving by the name reconciler.
type CondaRecord struct {
	Name     InternedString `yaml:"name"`
	Version  string         `yaml:"version"`
	Build    string         `yaml:"build"`
	Channel  string         `yaml:"channel"`
	Subdir   string         `yaml:"subdir,omitempty"`
	URL      string         `yaml:"url,omitempty"`
	FileName string         `yaml:"fn,omitempty"`
	// Depends holds the record's direct dependencies as match-spec
	// expressions ("foo <3").
	Depends []string `yaml:"depends,omitempty"`
	// Purls holds cross-ecosystem package-url identifiers, empty until the
	// reconciler resolves the record's name.
	Purls []string `yaml:"purls,omitempty"`
}

// RecordKey is the identity tuple of a conda record.
type RecordKey struct {
	Name    string
	Version string
	Build   string
	Channel string
}

// Key returns the record's identity tuple.
func (r CondaRecord) Key() RecordKey {
	return RecordKey{
		Name:    r.Name.String(),
		Version: r.Version,
		Build:   r.Build,
		Channel: r.Channel,
	}
}

// HasPurl reports whether the record already carries the given purl.
func (r CondaRecord) HasPurl(purl string) bool {
	return slices.Contains(r.Purls, purl)
}

// PypiRecord is one locked language-ecosystem package. Identity is the
// (name, version, source) tuple.
type PypiRecord struct {
	Name    InternedString `yaml:"name"`
	Version string         `yaml:"version"`
	// Source is the registry URL or direct URL the package is installed
	// from.
	Source   string   `yaml:"source,omitempty"`
	Editable bool     `yaml:"editable,omitempty"`
	Extras   []string `yaml:"extras,omitempty"`
	// Depends holds direct dependencies as requirement expressions.
	Depends []string `yaml:"depends,omitempty"`
}

// PypiKey is the identity tuple of a pypi record.
type PypiKey struct {
	Name    string
	Version string
	Source  string
}

// Key returns the record's identity tuple.
func (r PypiRecord) Key() PypiKey {
	return PypiKey{Name: r.Name.String(), Version: r.Version, Source: r.Source}
}

// PackageDatabase holds the channel contents a resolution pass solves
// against. It is immutable for the duration of a pass.
type PackageDatabase struct {
	Channels []string
	// Conda maps each platform to its available records. Noarch records are
	// consulted for every solve target.
	Conda map[Platform][]CondaRecord
	// Pypi maps normalized project names to their available records.
	Pypi map[string][]PypiRecord
}

// NewPackageDatabase creates an empty database for the given channels.
func NewPackageDatabase(channels ...string) *PackageDatabase {
	return &PackageDatabase{
		Channels: channels,
		Conda:    make(map[Platform][]CondaRecord),
		Pypi:     make(map[string][]PypiRecord),
	}
}

// AddConda adds a conda record to the given platform.
func (db *PackageDatabase) AddConda(platform Platform, record CondaRecord) {
	db.Conda[platform] = append(db.Conda[platform], record)
}

// AddPypi adds a pypi record to the index under its normalized name.
func (db *PackageDatabase) AddPypi(record PypiRecord) {
	name := NormalizePackageName(record.Name.String())
	db.Pypi[name] = append(db.Pypi[name], record)
}

// CondaCandidates returns the records named name that are installable on
// the platform, including noarch records.
func (db *PackageDatabase) CondaCandidates(platform Platform, name string) []CondaRecord {
	var out []CondaRecord
	for _, record := range db.Conda[platform] {
		if record.Name.String() == name {
			out = append(out, record)
		}
	}
	if platform != PlatformNoarch {
		for _, record := range db.Conda[PlatformNoarch] {
			if record.Name.String() == name {
				out = append(out, record)
			}
		}
	}
	return out
}
