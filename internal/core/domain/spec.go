package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Ecosystem identifies which package ecosystem a requirement or locked
// package belongs to.
type Ecosystem string

const (
	// EcosystemConda is the binary/conda-style ecosystem.
	EcosystemConda Ecosystem = "conda"
	// EcosystemPypi is the language-package ecosystem.
	EcosystemPypi Ecosystem = "pypi"
)

type constraintOp uint8

const (
	opAny constraintOp = iota
	opEqual
	opNotEqual
	opLess
	opLessEqual
	opGreater
	opGreaterEqual
)

func (o constraintOp) String() string {
	switch o {
	case opEqual:
		return "=="
	case opNotEqual:
		return "!="
	case opLess:
		return "<"
	case opLessEqual:
		return "<="
	case opGreater:
		return ">"
	case opGreaterEqual:
		return ">="
	default:
		return "*"
	}
}

type versionPredicate struct {
	op      constraintOp
	version Version
}

func (p versionPredicate) matches(v Version) bool {
	switch p.op {
	case opAny:
		return true
	case opEqual:
		return v.Compare(p.version) == 0
	case opNotEqual:
		return v.Compare(p.version) != 0
	case opLess:
		return v.Compare(p.version) < 0
	case opLessEqual:
		return v.Compare(p.version) <= 0
	case opGreater:
		return v.Compare(p.version) > 0
	case opGreaterEqual:
		return v.Compare(p.version) >= 0
	default:
		return false
	}
}

func (p versionPredicate) String() string {
	if p.op == opAny {
		return "*"
	}
	return p.op.String() + p.version.String()
}

// VersionConstraint is a conjunction of version predicates. All predicates
// must hold for a version to match.
type VersionConstraint struct {
	predicates []versionPredicate
}

// AnyVersion matches every version.
func AnyVersion() VersionConstraint {
	return VersionConstraint{}
}

// ParseConstraint parses a constraint expression such as "*", "==2",
// ">=1.2,<2" or "!=1.3".
func ParseConstraint(expr string) (VersionConstraint, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" || trimmed == "*" {
		return VersionConstraint{}, nil
	}

	var c VersionConstraint
	for _, clause := range strings.Split(trimmed, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" || clause == "*" {
			continue
		}

		op := opAny
		rest := clause
		switch {
		case strings.HasPrefix(clause, "=="):
			op, rest = opEqual, clause[2:]
		case strings.HasPrefix(clause, "!="):
			op, rest = opNotEqual, clause[2:]
		case strings.HasPrefix(clause, "<="):
			op, rest = opLessEqual, clause[2:]
		case strings.HasPrefix(clause, ">="):
			op, rest = opGreaterEqual, clause[2:]
		case strings.HasPrefix(clause, "<"):
			op, rest = opLess, clause[1:]
		case strings.HasPrefix(clause, ">"):
			op, rest = opGreater, clause[1:]
		case strings.HasPrefix(clause, "="):
			op, rest = opEqual, clause[1:]
		default:
			// A bare version pins exactly, matching common manifest usage.
			op, rest = opEqual, clause
		}

		v, err := ParseVersion(strings.TrimSpace(rest))
		if err != nil {
			return VersionConstraint{}, zerr.With(ErrInvalidMatchSpec, "expression", expr)
		}
		c.predicates = append(c.predicates, versionPredicate{op: op, version: v})
	}

	return c, nil
}

// Matches reports whether the given version satisfies every predicate.
func (c VersionConstraint) Matches(v Version) bool {
	for _, p := range c.predicates {
		if !p.matches(v) {
			return false
		}
	}
	return true
}

// IsAny reports whether the constraint matches every version.
func (c VersionConstraint) IsAny() bool {
	return len(c.predicates) == 0
}

// And returns the conjunction of two constraints. Combining rather than
// merging tables keeps every predicate in force simultaneously.
func (c VersionConstraint) And(other VersionConstraint) VersionConstraint {
	if other.IsAny() {
		return c
	}
	if c.IsAny() {
		return other
	}
	merged := make([]versionPredicate, 0, len(c.predicates)+len(other.predicates))
	merged = append(merged, c.predicates...)
	merged = append(merged, other.predicates...)
	return VersionConstraint{predicates: merged}
}

// Intersects reports whether a version satisfying both constraints can
// exist. It decides pins and range bounds exactly; != predicates never
// make a range empty on their own and are ignored. A false result is a
// definite conflict.
func (c VersionConstraint) Intersects(other VersionConstraint) bool {
	combined := make([]versionPredicate, 0, len(c.predicates)+len(other.predicates))
	combined = append(combined, c.predicates...)
	combined = append(combined, other.predicates...)

	var pin *Version
	for _, p := range combined {
		if p.op != opEqual {
			continue
		}
		if pin != nil && pin.Compare(p.version) != 0 {
			return false
		}
		v := p.version
		pin = &v
	}
	if pin != nil {
		for _, p := range combined {
			if !p.matches(*pin) {
				return false
			}
		}
		return true
	}

	var lower, upper *versionPredicate
	for i := range combined {
		p := combined[i]
		switch p.op {
		case opGreater, opGreaterEqual:
			if lower == nil || p.version.Compare(lower.version) > 0 ||
				(p.version.Compare(lower.version) == 0 && p.op == opGreater) {
				lower = &combined[i]
			}
		case opLess, opLessEqual:
			if upper == nil || p.version.Compare(upper.version) < 0 ||
				(p.version.Compare(upper.version) == 0 && p.op == opLess) {
				upper = &combined[i]
			}
		}
	}
	if lower == nil || upper == nil {
		return true
	}

	switch cmp := lower.version.Compare(upper.version); {
	case cmp > 0:
		return false
	case cmp == 0:
		return lower.op == opGreaterEqual && upper.op == opLessEqual
	default:
		return true
	}
}

// String renders the constraint back to its expression form.
func (c VersionConstraint) String() string {
	if c.IsAny() {
		return "*"
	}
	parts := make([]string, len(c.predicates))
	for i, p := range c.predicates {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

// RequirementSpec is one package requirement within a feature: an ecosystem
// tag, a package name and a version constraint, with an optional conda build
// string pin.
type RequirementSpec struct {
	Ecosystem  Ecosystem
	Name       InternedString
	Constraint VersionConstraint
	Build      string
}

// ParseRequirementSpec parses a spec expression of the form
// "name", "name ==2", "name >=1.2,<2" or "name ==2 build_0".
func ParseRequirementSpec(eco Ecosystem, expr string) (RequirementSpec, error) {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) == 0 {
		return RequirementSpec{}, zerr.With(ErrInvalidMatchSpec, "expression", expr)
	}

	spec := RequirementSpec{Ecosystem: eco, Name: NewInternedString(fields[0])}
	if len(fields) > 1 {
		c, err := ParseConstraint(fields[1])
		if err != nil {
			return RequirementSpec{}, err
		}
		spec.Constraint = c
	}
	if len(fields) > 2 {
		spec.Build = fields[2]
	}
	if len(fields) > 3 {
		return RequirementSpec{}, zerr.With(ErrInvalidMatchSpec, "expression", expr)
	}

	return spec, nil
}

// Matches reports whether a (version, build) pair satisfies the spec.
func (s RequirementSpec) Matches(v Version, build string) bool {
	if !s.Constraint.Matches(v) {
		return false
	}
	if s.Build != "" && s.Build != build {
		return false
	}
	return true
}

// And folds another spec for the same package into this one. Both
// constraints must hold simultaneously; a build pin from either side is
// kept. Conflicting build pins are reported by the solver, not here.
func (s RequirementSpec) And(other RequirementSpec) RequirementSpec {
	merged := s
	merged.Constraint = s.Constraint.And(other.Constraint)
	if merged.Build == "" {
		merged.Build = other.Build
	}
	return merged
}

// String renders the spec in "name constraint [build]" form.
func (s RequirementSpec) String() string {
	out := s.Name.String()
	if !s.Constraint.IsAny() {
		out += " " + s.Constraint.String()
	}
	if s.Build != "" {
		out += " " + s.Build
	}
	return out
}
