package resolve

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/lox/internal/engine/freshness"
	"go.trai.ch/lox/internal/engine/mapping"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options configures one resolution pass.
type Options struct {
	// Environments restricts the pass to the named environments. Empty
	// means every environment in the manifest.
	Environments []string
	// Force re-solves every group regardless of lock freshness.
	Force bool
	// Parallelism bounds concurrent solve and projection tasks. Zero means
	// the number of CPUs.
	Parallelism int
	// Auth is passed through to the bulk name-lookup capability.
	Auth ports.AuthContext
	// Overrides is the compressed override mapping (layer 2); it always
	// wins over the bulk lookup when it carries a name.
	Overrides map[string]string
}

// Status describes the outcome of one (environment, platform) pair.
type Status string

const (
	// StatusReused means the stored lock entry was up-to-date and kept.
	StatusReused Status = "reused"
	// StatusResolved means the pair was freshly solved and projected.
	StatusResolved Status = "resolved"
	// StatusFailed means the pair's solve group failed; its lock entry is
	// excluded from the committed update and re-reported on the next pass.
	StatusFailed Status = "failed"
)

// Outcome is the per-pair result of a resolution pass.
type Outcome struct {
	Status Status
	Err    error
}

// Result is the fan-in of one resolution pass: the lock file to commit and
// the per-pair outcomes.
type Result struct {
	Lock     *domain.LockFile
	Outcomes map[freshness.PairKey]Outcome
}

// Failed reports whether any pair failed.
func (r *Result) Failed() bool {
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Err joins the failure reasons of all failed pairs under
// domain.ErrResolutionFailed, or returns nil.
func (r *Result) Err() error {
	var joined error
	for key, outcome := range r.Outcomes {
		if outcome.Status != StatusFailed {
			continue
		}
		joined = errors.Join(joined, zerr.With(outcome.Err, "pair", key.String()))
	}
	if joined == nil {
		return nil
	}
	return errors.Join(domain.ErrResolutionFailed, joined)
}

// Resolver orchestrates a resolution pass as a two-phase fan-out/fan-in:
// phase 1 runs one solve task per (solve group, platform) pair, phase 2 one
// projection task per (environment, platform) pair. Tasks within a phase
// share no mutable state; a group's superset solution is published
// atomically before any dependent projection observes it.
type Resolver struct {
	unifier   *Unifier
	projector *Projector
	validator *freshness.Validator
	lookup    ports.PurlLookup
	tracer    ports.Tracer
}

// NewResolver creates a Resolver over the external solver and lookup
// capabilities.
func NewResolver(solver ports.Solver, lookup ports.PurlLookup, tracer ports.Tracer) *Resolver {
	return &Resolver{
		unifier:   NewUnifier(solver),
		projector: NewProjector(),
		validator: freshness.NewValidator(),
		lookup:    lookup,
		tracer:    tracer,
	}
}

type passState struct {
	manifest *domain.Manifest
	db       *domain.PackageDatabase
	groups   map[string]domain.SolveGroup

	mu        sync.Mutex
	solutions map[freshness.GroupKey]*GroupSolution
	failures  map[freshness.GroupKey]error
}

func (s *passState) publish(key freshness.GroupKey, solution *GroupSolution, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failures[key] = err
		return
	}
	s.solutions[key] = solution
}

func (s *passState) solution(key freshness.GroupKey) (*GroupSolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failures[key]; ok {
		return nil, err
	}
	return s.solutions[key], nil
}

// Resolve runs one full resolution pass. The previous lock decides, via the
// freshness validator, which group×platform pairs actually re-solve;
// up-to-date pairs are reused verbatim. Failed pairs keep their previous
// lock entry (or none) so the next pass re-reports them; sibling groups
// complete normally.
func (r *Resolver) Resolve(ctx context.Context, m *domain.Manifest, db *domain.PackageDatabase, prev *domain.LockFile, opts Options) (*Result, error) {
	groups, err := m.DeriveSolveGroups()
	if err != nil {
		return nil, err
	}

	targets, groupOf, err := r.targetEnvironments(m, groups, opts.Environments)
	if err != nil {
		return nil, err
	}

	if prev == nil {
		prev = domain.NewLockFile()
	}
	report, err := r.validator.Classify(prev, m)
	if err != nil {
		return nil, err
	}

	state := &passState{
		manifest:  m,
		db:        db,
		groups:    make(map[string]domain.SolveGroup, len(groups)),
		solutions: make(map[freshness.GroupKey]*GroupSolution),
		failures:  make(map[freshness.GroupKey]error),
	}
	for _, group := range groups {
		state.groups[group.Name.String()] = group
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	plan := r.solvePlan(groups, targets, groupOf, report, opts.Force)
	r.emitPlan(ctx, plan, targets)

	reconciler := mapping.NewReconciler(r.lookup, opts.Overrides)
	r.runSolvePhase(ctx, state, plan, reconciler, opts.Auth, parallelism)

	return r.runProjectionPhase(ctx, state, prev, targets, groupOf, plan, report, opts, parallelism)
}

// targetEnvironments resolves the requested environment names and maps each
// environment to its derived solve group.
func (r *Resolver) targetEnvironments(m *domain.Manifest, groups []domain.SolveGroup, requested []string) ([]string, map[string]domain.SolveGroup, error) {
	groupOf := make(map[string]domain.SolveGroup)
	for _, group := range groups {
		for _, envName := range group.Environments {
			groupOf[envName] = group
		}
	}

	targets := requested
	if len(targets) == 0 {
		targets = m.EnvironmentNames()
	} else {
		for _, envName := range targets {
			if _, err := m.Environment(envName); err != nil {
				return nil, nil, err
			}
		}
		targets = slices.Clone(targets)
		slices.Sort(targets)
	}

	return targets, groupOf, nil
}

// solvePlan collects the (group, platform) pairs phase 1 must run: groups
// containing a targeted environment whose classification demands a solve.
func (r *Resolver) solvePlan(groups []domain.SolveGroup, targets []string, groupOf map[string]domain.SolveGroup, report *freshness.Report, force bool) map[freshness.GroupKey]domain.SolveGroup {
	targeted := make(map[string]bool, len(targets))
	for _, envName := range targets {
		targeted[envName] = true
	}

	plan := make(map[freshness.GroupKey]domain.SolveGroup)
	for _, group := range groups {
		interested := false
		for _, envName := range group.Environments {
			if targeted[envName] {
				interested = true
				break
			}
		}
		if !interested {
			continue
		}
		for _, platform := range group.Platforms {
			key := freshness.GroupKey{Group: group.Name.String(), Platform: platform}
			if force || report.GroupsToSolve[key] {
				plan[key] = group
			}
		}
	}
	return plan
}

func (r *Resolver) emitPlan(ctx context.Context, plan map[freshness.GroupKey]domain.SolveGroup, targets []string) {
	units := make([]string, 0, len(plan)+len(targets))
	for key := range plan {
		units = append(units, "solve "+key.String())
	}
	slices.Sort(units)
	r.tracer.EmitPlan(ctx, units)
}

// runSolvePhase is phase 1: one solve task per planned (group, platform)
// pair. Tasks run in parallel, fail independently, and publish their
// superset solution atomically. Purl reconciliation runs here, once per
// group solution, and only when the group's union requirements include the
// language ecosystem.
func (r *Resolver) runSolvePhase(ctx context.Context, state *passState, plan map[freshness.GroupKey]domain.SolveGroup, reconciler *mapping.Reconciler, auth ports.AuthContext, parallelism int) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for key, group := range plan {
		g.Go(func() error {
			_, span := r.tracer.Start(ctx, "solve "+key.String())
			defer span.End()

			solution, err := r.unifier.Solve(ctx, state.manifest, group, key.Platform, state.db)
			if err == nil && solution.HasPypi {
				solution.Conda, err = reconciler.Amend(ctx, solution.Conda, auth)
			}
			if err != nil {
				span.RecordError(err)
			}

			state.publish(key, solution, err)
			// Failures are collected per unit of work, never propagated
			// through the group: sibling solves keep running.
			return nil
		})
	}

	_ = g.Wait()
}

// runProjectionPhase is phase 2 plus fan-in: one projection task per
// (environment, platform) pair, then a single lock file assembled from the
// committed prev entries and the fresh projections. Every member of a
// re-solved group projects from the new solution, including environments
// outside the requested target set: group members never commit entries
// from different solutions.
func (r *Resolver) runProjectionPhase(ctx context.Context, state *passState, prev *domain.LockFile, targets []string, groupOf map[string]domain.SolveGroup, plan map[freshness.GroupKey]domain.SolveGroup, report *freshness.Report, opts Options, parallelism int) (*Result, error) {
	pairs := make(map[freshness.PairKey]freshness.GroupKey)
	for _, envName := range targets {
		group := groupOf[envName]
		for _, platform := range group.Platforms {
			pair := freshness.PairKey{Environment: envName, Platform: platform}
			pairs[pair] = freshness.GroupKey{Group: group.Name.String(), Platform: platform}
		}
	}
	for key, group := range plan {
		for _, envName := range group.Environments {
			pairs[freshness.PairKey{Environment: envName, Platform: key.Platform}] = key
		}
	}

	result := &Result{
		Lock:     prev.Clone(),
		Outcomes: make(map[freshness.PairKey]Outcome),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for pair, groupKey := range pairs {
		if !opts.Force && report.Pairs[pair] == freshness.StateUpToDate {
			mu.Lock()
			result.Outcomes[pair] = Outcome{Status: StatusReused}
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			_, span := r.tracer.Start(ctx, "project "+pair.String())
			defer span.End()

			lock, err := r.projectPair(state, pair.Environment, groupKey, pair.Platform)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				span.RecordError(err)
				result.Outcomes[pair] = Outcome{Status: StatusFailed, Err: err}
				return nil
			}
			result.Lock.SetPlatform(pair.Environment, state.manifest.Channels, pair.Platform, lock)
			result.Outcomes[pair] = Outcome{Status: StatusResolved}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Resolver) projectPair(state *passState, envName string, groupKey freshness.GroupKey, platform domain.Platform) (domain.PlatformLock, error) {
	solution, err := state.solution(groupKey)
	if err != nil {
		return domain.PlatformLock{}, err
	}
	if solution == nil {
		// The group was never solved this pass; its failure was already
		// recorded under a different platform or the plan skipped it.
		return domain.PlatformLock{}, zerr.With(domain.ErrResolutionFailed, "solve_group", groupKey.String())
	}

	projection, err := r.projector.Project(state.manifest, envName, solution)
	if err != nil {
		return domain.PlatformLock{}, err
	}

	fingerprint, err := freshness.Fingerprint(state.manifest, envName, platform)
	if err != nil {
		return domain.PlatformLock{}, err
	}

	return domain.PlatformLock{
		Fingerprint: fingerprint,
		Conda:       projection.Conda,
		Pypi:        projection.Pypi,
	}, nil
}
