// Package freshness decides whether a persisted lock still satisfies the
// current requirement model, per (environment, platform) pair.
package freshness

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/zerr"
)

// State classifies one (environment, platform) pair of a persisted lock
// against the current requirement model.
type State uint8

const (
	// StateMissing indicates the lock has no entry for the pair.
	StateMissing State = iota
	// StateStale indicates the stored fingerprint no longer matches the
	// current requirement and channel fingerprint; the pair's whole solve
	// group must re-solve.
	StateStale
	// StateUpToDate indicates the stored fingerprint matches exactly.
	StateUpToDate
)

func (s State) String() string {
	switch s {
	case StateUpToDate:
		return "up-to-date"
	case StateStale:
		return "stale"
	default:
		return "missing"
	}
}

// PairKey identifies one (environment, platform) unit of work.
type PairKey struct {
	Environment string
	Platform    domain.Platform
}

func (k PairKey) String() string {
	return k.Environment + "/" + string(k.Platform)
}

// Fingerprint computes the stable hash of an environment's resolved
// requirement specs, channel list and solve-group composition for one
// platform. Any change to a spec, the channel list, the platform or the
// group membership changes the fingerprint; every manifest field that
// affects resolution must flow through here, since an omitted field would
// let the validator wrongly report up-to-date. Group composition matters
// even when the environment's own specs are untouched: joining or leaving
// a group changes the union requirement set the environment resolves
// against.
func Fingerprint(m *domain.Manifest, envName string, platform domain.Platform) (string, error) {
	condaSpecs, err := m.EnvironmentSpecs(envName, domain.EcosystemConda)
	if err != nil {
		return "", err
	}
	pypiSpecs, err := m.EnvironmentSpecs(envName, domain.EcosystemPypi)
	if err != nil {
		return "", err
	}

	digest := xxhash.New()
	_, _ = digest.WriteString(string(platform))
	_, _ = digest.Write([]byte{0})

	groupName, members := m.SolveGroupOf(envName)
	_, _ = digest.WriteString(groupName)
	_, _ = digest.Write([]byte{0})
	for _, member := range members {
		_, _ = digest.WriteString(member)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})

	for _, channel := range sortedClone(m.Channels) {
		_, _ = digest.WriteString(channel)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})

	for _, spec := range sortedSpecStrings(condaSpecs) {
		_, _ = digest.WriteString("conda:" + spec)
		_, _ = digest.Write([]byte{0})
	}
	_, _ = digest.Write([]byte{0})

	for _, spec := range sortedSpecStrings(pypiSpecs) {
		_, _ = digest.WriteString("pypi:" + spec)
		_, _ = digest.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

func sortedClone(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return out
}

func sortedSpecStrings(specs []domain.RequirementSpec) []string {
	out := make([]string, len(specs))
	for i, spec := range specs {
		out[i] = spec.String()
	}
	slices.Sort(out)
	return out
}

// Validator classifies a persisted lock against the current requirement
// model. It is a pure query surface: nothing is solved or modified.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ClassifyPair classifies one (environment, platform) pair.
func (v *Validator) ClassifyPair(lock *domain.LockFile, m *domain.Manifest, envName string, platform domain.Platform) (State, error) {
	stored, ok := lock.Platform(envName, platform)
	if !ok {
		return StateMissing, nil
	}

	current, err := Fingerprint(m, envName, platform)
	if err != nil {
		return StateMissing, err
	}

	if stored.Fingerprint == current {
		return StateUpToDate, nil
	}
	return StateStale, nil
}

// Report is the full classification of a lock against a manifest, with
// group-wide staleness already propagated.
type Report struct {
	Pairs map[PairKey]State
	// GroupsToSolve names the (solve group, platform) pairs the unifier
	// must re-run. Staleness of any group member forces re-solving the
	// whole group for that platform, even when other members' own
	// fingerprints are unchanged, to preserve cross-environment
	// consistency.
	GroupsToSolve map[GroupKey]bool
}

// GroupKey identifies one (solve group, platform) unit of work.
type GroupKey struct {
	Group    string
	Platform domain.Platform
}

func (k GroupKey) String() string {
	return k.Group + "/" + string(k.Platform)
}

// Classify compares the persisted lock against the current manifest and
// returns the per-pair classification plus the set of group×platform pairs
// requiring a fresh solve. Solve groups are derived from the manifest here,
// never read from the lock.
func (v *Validator) Classify(lock *domain.LockFile, m *domain.Manifest) (*Report, error) {
	groups, err := m.DeriveSolveGroups()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to derive solve groups")
	}

	report := &Report{
		Pairs:         make(map[PairKey]State),
		GroupsToSolve: make(map[GroupKey]bool),
	}

	for _, group := range groups {
		for _, platform := range group.Platforms {
			fresh := true
			for _, envName := range group.Environments {
				state, err := v.ClassifyPair(lock, m, envName, platform)
				if err != nil {
					return nil, err
				}
				report.Pairs[PairKey{Environment: envName, Platform: platform}] = state
				if state != StateUpToDate {
					fresh = false
				}
			}
			if !fresh {
				report.GroupsToSolve[GroupKey{Group: group.Name.String(), Platform: platform}] = true
				// Every member re-projects once the group re-solves, so
				// up-to-date members of a stale group are marked stale too.
				for _, envName := range group.Environments {
					key := PairKey{Environment: envName, Platform: platform}
					if report.Pairs[key] == StateUpToDate {
						report.Pairs[key] = StateStale
					}
				}
			}
		}
	}

	return report, nil
}
