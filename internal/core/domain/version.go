package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Version is a parsed package version. Conda-style versions are ordered
// segment-wise: each dot-separated segment carries a numeric part and an
// optional alphanumeric tail (e.g. "1.2.3a"). This ordering is not semver;
// missing segments compare as zero.
type Version struct {
	raw      string
	segments []versionSegment
}

type versionSegment struct {
	num  int
	tail string
}

// ParseVersion parses a version string into its comparable form.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, zerr.With(ErrInvalidVersion, "version", s)
	}

	parts := strings.Split(trimmed, ".")
	segments := make([]versionSegment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, err.Error()), "version", s)
		}
		segments = append(segments, seg)
	}

	return Version{raw: trimmed, segments: segments}, nil
}

// MustParseVersion is a test and literal helper that panics on invalid input.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseSegment(s string) (versionSegment, error) {
	if s == "" {
		return versionSegment{}, zerr.New("empty version segment")
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	seg := versionSegment{tail: s[i:]}
	if i > 0 {
		num, err := strconv.Atoi(s[:i])
		if err != nil {
			return versionSegment{}, err
		}
		seg.num = num
	}
	return seg, nil
}

// String returns the original version string.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether the version is the unparsed zero value.
func (v Version) IsZero() bool {
	return v.raw == ""
}

// Compare returns -1, 0 or 1 if v is ordered before, equal to or after
// other. A segment with an alphanumeric tail orders after the same segment
// without one ("1.2" < "1.2a").
func (v Version) Compare(other Version) int {
	n := len(v.segments)
	if len(other.segments) > n {
		n = len(other.segments)
	}

	for i := 0; i < n; i++ {
		var a, b versionSegment
		if i < len(v.segments) {
			a = v.segments[i]
		}
		if i < len(other.segments) {
			b = other.segments[i]
		}

		if a.num != b.num {
			if a.num < b.num {
				return -1
			}
			return 1
		}
		if a.tail != b.tail {
			if a.tail < b.tail {
				return -1
			}
			return 1
		}
	}

	return 0
}
