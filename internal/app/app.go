// Package app implements the application layer for lox.
package app

import (
	"context"
	"os"
	"sort"

	"go.trai.ch/lox/internal/adapters/pypimap" //nolint:depguard // Override table loading is wired in the app layer
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/lox/internal/engine/freshness"
	"go.trai.ch/lox/internal/engine/resolve"
	"go.trai.ch/zerr"
)

// AuthTokenEnv supplies the bearer token for the name-lookup service.
const AuthTokenEnv = "LOX_MAPPING_TOKEN"

// App represents the main application logic.
type App struct {
	manifestLoader ports.ManifestLoader
	channelReader  ports.ChannelReader
	resolver       *resolve.Resolver
	store          ports.LockStore
	logger         ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ManifestLoader,
	channels ports.ChannelReader,
	resolver *resolve.Resolver,
	store ports.LockStore,
	logger ports.Logger,
) *App {
	return &App{
		manifestLoader: loader,
		channelReader:  channels,
		resolver:       resolver,
		store:          store,
		logger:         logger,
	}
}

// LockOptions configures one lock pass.
type LockOptions struct {
	// Environments restricts the pass. Empty locks every environment.
	Environments []string
	// Force re-solves everything regardless of lock freshness.
	Force bool
	// OverridesPath points at the compressed override mapping file.
	// Empty means no overrides.
	OverridesPath string
}

// LockOutcome is the per-pair summary returned to the CLI.
type LockOutcome struct {
	Pair   freshness.PairKey
	Status resolve.Status
	Err    error
}

// Lock runs a full resolution pass and commits the updated lock file.
// Successfully resolved pairs are committed even when sibling pairs fail;
// the returned error then reports the failures.
func (a *App) Lock(ctx context.Context, opts LockOptions) ([]LockOutcome, error) {
	m, err := a.manifestLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}

	db, err := a.channelReader.Read(ctx, m.Channels, m.Platforms)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read channels")
	}

	prev, err := a.store.Load()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load lock file")
	}

	overrides, err := a.loadOverrides(opts.OverridesPath)
	if err != nil {
		return nil, err
	}

	result, err := a.resolver.Resolve(ctx, m, db, prev, resolve.Options{
		Environments: opts.Environments,
		Force:        opts.Force,
		Auth:         ports.AuthContext{Token: os.Getenv(AuthTokenEnv)},
		Overrides:    overrides,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "resolution pass failed")
	}

	if err := a.store.Commit(result.Lock); err != nil {
		return nil, zerr.Wrap(err, "failed to commit lock file")
	}

	outcomes := collectOutcomes(result)
	for _, outcome := range outcomes {
		if outcome.Status == resolve.StatusFailed {
			a.logger.Error(zerr.With(outcome.Err, "pair", outcome.Pair.String()))
		}
	}
	return outcomes, result.Err()
}

// StatusEntry is one (environment, platform) freshness classification.
type StatusEntry struct {
	Pair  freshness.PairKey
	State freshness.State
}

// Status classifies every lock entry against the current manifest without
// solving anything.
func (a *App) Status(ctx context.Context) ([]StatusEntry, error) {
	m, err := a.manifestLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}

	lock, err := a.store.Load()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load lock file")
	}

	report, err := freshness.NewValidator().Classify(lock, m)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to classify lock file")
	}

	entries := make([]StatusEntry, 0, len(report.Pairs))
	for pair, state := range report.Pairs {
		entries = append(entries, StatusEntry{Pair: pair, State: state})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Pair.String() < entries[j].Pair.String()
	})
	return entries, nil
}

func (a *App) loadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	overrides, err := pypimap.LoadOverrides(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load override mapping")
	}
	return overrides, nil
}

func collectOutcomes(result *resolve.Result) []LockOutcome {
	outcomes := make([]LockOutcome, 0, len(result.Outcomes))
	for pair, outcome := range result.Outcomes {
		outcomes = append(outcomes, LockOutcome{Pair: pair, Status: outcome.Status, Err: outcome.Err})
	}
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Pair.String() < outcomes[j].Pair.String()
	})
	return outcomes
}
