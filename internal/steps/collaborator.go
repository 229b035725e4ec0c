package steps

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

// collaborator is the shared half of the three external steps: render the
// configured argv and hand it to the Runner.
type collaborator struct {
	name     domain.StepName
	runner   Runner
	commands Commands
	toolsDir string
}

func (c *collaborator) Name() domain.StepName {
	return c.name
}

func (c *collaborator) invoke(ctx context.Context, target *Target) error {
	args, err := c.commands.Render(c.name, NewCommandData(target, c.toolsDir))
	if err != nil {
		return err
	}

	outcome, err := c.runner.RunStep(ctx, c.name, args)
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("scenario_id", target.Scenario.ID).
		Str("step", c.name.String()).
		Int64("duration_ms", outcome.Duration.Milliseconds()).
		Msg("collaborator finished")
	return nil
}

// requireFile fails with ErrMissingDependency unless path is a regular file.
func requireFile(path, what string) error {
	if artifact.Exists(path) {
		return nil
	}
	return qaerrors.Wrapf(qaerrors.ErrMissingDependency, "%s not found: %s", what, path)
}

// precondition returns a failed result with zero duration.
func precondition(name domain.StepName, err error) (*domain.StepResult, error) {
	return fail(&domain.StepResult{Step: name}, time.Time{}, err)
}

func succeed(result *domain.StepResult, start time.Time, output string, metrics map[string]float64) (*domain.StepResult, error) {
	result.Status = constants.StepStatusSuccess
	result.Duration = time.Since(start)
	result.Output = output
	result.Metrics = metrics
	return result, nil
}

// TestDataExecutor asks the test-data collaborator to synthesize one row per
// variant. It requires the variants table.
type TestDataExecutor struct {
	collaborator
}

// NewTestDataExecutor creates a TestDataExecutor.
func NewTestDataExecutor(runner Runner, commands Commands, toolsDir string) *TestDataExecutor {
	return &TestDataExecutor{collaborator{name: domain.StepTestData, runner: runner, commands: commands, toolsDir: toolsDir}}
}

// Execute runs the test-data step.
func (e *TestDataExecutor) Execute(ctx context.Context, target *Target) (*domain.StepResult, error) {
	if err := requireFile(target.Paths.Variants, "variants file"); err != nil {
		return precondition(e.name, err)
	}

	start := time.Now()
	result := &domain.StepResult{Step: e.name}
	if err := e.invoke(ctx, target); err != nil {
		return fail(result, start, err)
	}

	rows, err := artifact.CountRows(target.Paths.TestData)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", target.Paths.TestData).Msg("failed to count test data rows")
	}
	return succeed(result, start, target.Paths.TestData, map[string]float64{
		domain.MetricRowCount: float64(rows),
	})
}

// ScriptsExecutor asks the scripts collaborator to render one script per
// variant. It requires the variants table, the test data table and a
// scenario-description source.
type ScriptsExecutor struct {
	collaborator
}

// NewScriptsExecutor creates a ScriptsExecutor.
func NewScriptsExecutor(runner Runner, commands Commands, toolsDir string) *ScriptsExecutor {
	return &ScriptsExecutor{collaborator{name: domain.StepScripts, runner: runner, commands: commands, toolsDir: toolsDir}}
}

// Execute runs the scripts step.
func (e *ScriptsExecutor) Execute(ctx context.Context, target *Target) (*domain.StepResult, error) {
	if err := requireFile(target.Paths.Variants, "variants file"); err != nil {
		return precondition(e.name, err)
	}
	if err := requireFile(target.Paths.TestData, "test data file"); err != nil {
		return precondition(e.name, err)
	}
	if target.ScenariosFile == "" {
		return precondition(e.name, qaerrors.Wrap(qaerrors.ErrMissingDependency, "scenarios file not provided"))
	}
	if _, err := os.Stat(target.ScenariosFile); errors.Is(err, fs.ErrNotExist) {
		return precondition(e.name, qaerrors.Wrapf(qaerrors.ErrMissingDependency, "scenarios file not found: %s", target.ScenariosFile))
	}

	start := time.Now()
	result := &domain.StepResult{Step: e.name}
	if err := e.invoke(ctx, target); err != nil {
		return fail(result, start, err)
	}

	scripts, err := artifact.CountScripts(target.Paths.ScriptsDir)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", target.Paths.ScriptsDir).Msg("failed to count scripts")
	}
	return succeed(result, start, target.Paths.ScriptsDir, map[string]float64{
		domain.MetricScriptCount: float64(scripts),
	})
}

// CombinatorialExecutor asks the reduction collaborator for a covering plan
// and reads its coverage and case count back. It requires the variants
// table.
type CombinatorialExecutor struct {
	collaborator
}

// NewCombinatorialExecutor creates a CombinatorialExecutor.
func NewCombinatorialExecutor(runner Runner, commands Commands, toolsDir string) *CombinatorialExecutor {
	return &CombinatorialExecutor{collaborator{name: domain.StepCombinatorial, runner: runner, commands: commands, toolsDir: toolsDir}}
}

// Execute runs the combinatorial step.
func (e *CombinatorialExecutor) Execute(ctx context.Context, target *Target) (*domain.StepResult, error) {
	if err := requireFile(target.Paths.Variants, "variants file"); err != nil {
		return precondition(e.name, err)
	}

	start := time.Now()
	result := &domain.StepResult{Step: e.name}
	if err := e.invoke(ctx, target); err != nil {
		return fail(result, start, err)
	}

	plan, err := artifact.ParsePlanReport(target.Paths.Plan)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", target.Paths.Plan).Msg("failed to read combinatorial plan")
	}
	metrics := make(map[string]float64, 2)
	if plan.HasCoverage {
		metrics[domain.MetricCoveragePct] = plan.CoveragePct
	}
	if plan.HasCount {
		metrics[domain.MetricOptimizedCount] = float64(plan.OptimizedCount)
	}
	return succeed(result, start, target.Paths.Plan, metrics)
}

var (
	_ Executor = (*VariantsExecutor)(nil)
	_ Executor = (*TestDataExecutor)(nil)
	_ Executor = (*ScriptsExecutor)(nil)
	_ Executor = (*CombinatorialExecutor)(nil)
)
