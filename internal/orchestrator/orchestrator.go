// Package orchestrator drives the per-scenario step chain over a batch of
// scenarios.
//
// Within a scenario, steps run strictly in pipeline order; the first
// failure stops the chain and the remaining requested steps are recorded as
// skipped. Scenarios are isolated from each other: a failed scenario never
// stops the batch. With more than one worker, whole scenarios run
// concurrently; steps of one scenario never do.
//
// Import rules:
//   - CAN import: internal/catalog, internal/steps, internal/domain,
//     internal/constants, internal/errors, internal/flock, internal/clock
//   - MUST NOT import: internal/cli, internal/aggregator
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/catalog"
	"github.com/mrz1836/qaforge/internal/clock"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/ctxutil"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/flock"
	"github.com/mrz1836/qaforge/internal/steps"
)

// Config holds the batch settings of an Orchestrator.
type Config struct {
	// Root is the scenarios root every scenario directory lives under.
	Root string

	// ScenariosFile is the scenario-description source for the scripts step.
	ScenariosFile string

	// Parallel is the number of scenarios processed at once. Values below
	// two run sequentially.
	Parallel int

	// WriteReport controls whether Run writes the batch report next to
	// the scenarios root.
	WriteReport bool
}

// ProgressFunc is called after each scenario completes.
type ProgressFunc func(result *domain.ScenarioResult, completed, total int)

// Orchestrator runs the pipeline for scenarios of a catalog.
type Orchestrator struct {
	catalog  *catalog.Catalog
	registry *steps.Registry
	cfg      Config
	logger   zerolog.Logger
	clock    clock.Clock
	progress ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used for report timestamps.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithProgress registers a callback invoked after each scenario.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// New creates an Orchestrator.
func New(cat *catalog.Catalog, registry *steps.Registry, cfg Config, logger zerolog.Logger, opts ...Option) *Orchestrator {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	o := &Orchestrator{
		catalog:  cat,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		clock:    clock.RealClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessScenario runs the requested steps for one scenario and never
// returns an error: every failure is folded into the result. names must be
// in pipeline order (see NormalizeSteps).
func (o *Orchestrator) ProcessScenario(ctx context.Context, id string, names []domain.StepName) *domain.ScenarioResult {
	start := o.clock.Now()
	result := &domain.ScenarioResult{
		ScenarioID: id,
		Steps:      make([]domain.StepResult, 0, len(names)),
		Artifacts:  make(map[domain.StepName]string, len(names)),
	}
	log := o.logger.With().Str("scenario_id", id).Logger()

	def, err := o.catalog.Lookup(id)
	if err == nil {
		err = o.catalog.Validation(id)
	}
	if err != nil {
		result.Status = constants.ScenarioStatusFailed
		result.Error = err.Error()
		log.Error().Err(err).Msg("scenario not runnable")
		return result
	}
	result.Title = def.Title
	target := steps.NewTarget(o.cfg.Root, def, o.catalog.Global(), o.cfg.ScenariosFile)

	for i, name := range names {
		if err := ctxutil.Canceled(ctx); err != nil {
			result.Error = fmt.Sprintf("scenario %s: %v before step %s", id, errors.ErrInterrupted, name)
			appendSkipped(result, names[i:])
			break
		}

		step, err := o.runStep(ctx, log, target, name)
		result.Steps = append(result.Steps, *step)
		if err != nil {
			result.Error = fmt.Sprintf("scenario %s step %s: %v", id, name, err)
			appendSkipped(result, names[i+1:])
			break
		}
		if step.Output != "" {
			result.Artifacts[name] = step.Output
		}
	}

	result.Status = scenarioStatus(result.Steps)
	result.Duration = o.clock.Now().Sub(start)

	event := log.Info()
	if result.Status != constants.ScenarioStatusSuccess {
		event = log.Warn().Str("error", result.Error)
	}
	event.
		Str("status", result.Status.String()).
		Int("completed_steps", result.Completed()).
		Int64("duration_ms", result.Duration.Milliseconds()).
		Msg("scenario finished")
	return result
}

func (o *Orchestrator) runStep(ctx context.Context, log zerolog.Logger, target *steps.Target, name domain.StepName) (*domain.StepResult, error) {
	executor, err := o.registry.Get(name)
	if err != nil {
		return &domain.StepResult{Step: name, Status: constants.StepStatusFailed, Error: err.Error()}, err
	}

	log.Debug().Str("step", name.String()).Msg("executing step")
	stepCtx := log.WithContext(ctx)

	start := time.Now()
	result, err := executor.Execute(stepCtx, target)
	elapsed := time.Since(start)
	if result == nil {
		result = &domain.StepResult{Step: name, Duration: elapsed}
	}

	if err != nil {
		result.Status = constants.StepStatusFailed
		if result.Error == "" {
			result.Error = err.Error()
		}
		buildStepLogEvent(log, zerolog.ErrorLevel, name, result).Err(err).Msg("step failed")
		return result, err
	}

	if result.Status == "" {
		result.Status = constants.StepStatusSuccess
	}
	buildStepLogEvent(log, zerolog.InfoLevel, name, result).Msg("step completed")
	return result, nil
}

// buildStepLogEvent creates a log event with the common step fields.
func buildStepLogEvent(log zerolog.Logger, level zerolog.Level, name domain.StepName, result *domain.StepResult) *zerolog.Event {
	//nolint:zerologlint // event returned for caller to dispatch
	event := log.WithLevel(level).
		Str("step", name.String()).
		Str("status", result.Status.String()).
		Int64("duration_ms", result.Duration.Milliseconds())
	for key, value := range result.Metrics {
		event = event.Float64(key, value)
	}
	return event
}

func appendSkipped(result *domain.ScenarioResult, names []domain.StepName) {
	for _, name := range names {
		result.Steps = append(result.Steps, domain.StepResult{Step: name, Status: constants.StepStatusSkipped})
	}
}

// scenarioStatus derives the overall status from the recorded steps:
// success when every step succeeded, failed when nothing succeeded, and
// partial otherwise.
func scenarioStatus(results []domain.StepResult) constants.ScenarioStatus {
	succeeded, total := 0, len(results)
	for _, r := range results {
		if r.Status == constants.StepStatusSuccess {
			succeeded++
		}
	}
	switch {
	case total > 0 && succeeded == total:
		return constants.ScenarioStatusSuccess
	case succeeded == 0:
		return constants.ScenarioStatusFailed
	default:
		return constants.ScenarioStatusPartial
	}
}

// Run processes every scenario in ids with the requested steps and returns
// the batch report. Step and scenario failures are part of the report, not
// errors. Run returns an error only when the batch could not start (no
// scenarios, bad steps, root locked) or was interrupted, in which case the
// partial report is returned with ErrInterrupted.
func (o *Orchestrator) Run(ctx context.Context, ids []string, names []domain.StepName) (*Report, error) {
	if len(ids) == 0 {
		return nil, errors.ErrNoScenarios
	}
	names, err := NormalizeSteps(names)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if !o.registry.Has(name) {
			return nil, errors.Wrapf(errors.ErrUnknownStep, "%s has no executor", name)
		}
	}

	if err := artifact.EnsureDir(o.cfg.Root); err != nil {
		return nil, err
	}
	lock, err := flock.Acquire(ctx, filepath.Join(o.cfg.Root, constants.LockFileName), constants.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := lock.Release(); relErr != nil {
			o.logger.Warn().Err(relErr).Msg("failed to release scenarios root lock")
		}
	}()

	report := newReport(uuid.NewString(), o.clock.Now(), names, o.cfg.Parallel)
	o.logger.Info().
		Str("run_id", report.RunID).
		Int("scenarios", len(ids)).
		Strs("steps", stepStrings(names)).
		Int("parallel", o.cfg.Parallel).
		Msg("starting batch")

	results := make([]*domain.ScenarioResult, len(ids))
	var (
		mu        sync.Mutex
		completed int
	)
	finish := func(i int, r *domain.ScenarioResult) {
		mu.Lock()
		defer mu.Unlock()
		results[i] = r
		report.add(r)
		completed++
		if o.progress != nil {
			o.progress(r, completed, len(ids))
		}
	}

	if o.cfg.Parallel <= 1 {
		for i, id := range ids {
			if ctxutil.Canceled(ctx) != nil {
				break
			}
			finish(i, o.ProcessScenario(ctx, id, names))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.cfg.Parallel)
		for i, id := range ids {
			if ctxutil.Canceled(ctx) != nil {
				break
			}
			g.Go(func() error {
				if ctxutil.Canceled(ctx) != nil {
					return nil
				}
				finish(i, o.ProcessScenario(ctx, id, names))
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, r := range results {
		if r == nil {
			report.NotStarted = append(report.NotStarted, ids[i])
			continue
		}
		report.Scenarios = append(report.Scenarios, r)
	}
	report.Interrupted = ctxutil.Canceled(ctx) != nil
	report.finish(o.clock.Now())

	if o.cfg.WriteReport {
		path := filepath.Join(artifact.SummaryDir(o.cfg.Root), constants.ReportFileName)
		if err := report.Write(path); err != nil {
			o.logger.Warn().Err(err).Str("path", path).Msg("failed to write batch report")
		} else {
			report.Path = path
		}
	}

	o.logger.Info().
		Str("run_id", report.RunID).
		Int("success", report.StatusCounts[constants.ScenarioStatusSuccess]).
		Int("partial", report.StatusCounts[constants.ScenarioStatusPartial]).
		Int("failed", report.StatusCounts[constants.ScenarioStatusFailed]).
		Int("not_started", len(report.NotStarted)).
		Int64("duration_ms", report.Duration.Milliseconds()).
		Msg("batch finished")

	if report.Interrupted {
		return report, errors.ErrInterrupted
	}
	return report, nil
}

func stepStrings(names []domain.StepName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}
