package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownEnvironment is returned when a requested environment is not declared in the manifest.
	ErrUnknownEnvironment = zerr.New("unknown environment")

	// ErrUnknownFeature is returned when an environment activates a feature that is not declared.
	ErrUnknownFeature = zerr.New("unknown feature")

	// ErrSolveGroupPlatformMismatch is returned when members of a solve group target different platform sets.
	ErrSolveGroupPlatformMismatch = zerr.New("solve group members target different platforms")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidMatchSpec is returned when a requirement expression cannot be parsed.
	ErrInvalidMatchSpec = zerr.New("invalid match spec")

	// ErrUnsatisfiable is returned when the unified requirement set of a solve group has no valid solution.
	ErrUnsatisfiable = zerr.New("unsatisfiable requirements")

	// ErrInternalConsistency is returned when a direct requirement resolved
	// by the unifier is missing from the superset solution during
	// projection. This is a defect in the unifier/projector contract, not a
	// user-facing solve failure.
	ErrInternalConsistency = zerr.New("internal consistency violation: direct requirement missing from superset solution")

	// ErrResolutionFailed is returned when one or more environment/platform pairs could not be resolved.
	ErrResolutionFailed = zerr.New("resolution failed")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest file")

	// ErrManifestParseFailed is returned when the manifest file cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest file")

	// ErrLockReadFailed is returned when the lock file cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrLockParseFailed is returned when the lock file cannot be parsed.
	ErrLockParseFailed = zerr.New("failed to parse lock file")

	// ErrLockWriteFailed is returned when the lock file cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrLookupFailed is returned when the bulk name-lookup collaborator fails as a whole.
	// Absence of an individual name from its result is not an error.
	ErrLookupFailed = zerr.New("bulk name lookup failed")

	// ErrOverrideReadFailed is returned when the compressed override mapping cannot be read.
	ErrOverrideReadFailed = zerr.New("failed to read override mapping")

	// ErrChannelReadFailed is returned when channel contents cannot be read into the package database.
	ErrChannelReadFailed = zerr.New("failed to read channel contents")
)
