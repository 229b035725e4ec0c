package orchestrator_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/catalog"
	"github.com/mrz1836/qaforge/internal/clock"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/flock"
	"github.com/mrz1836/qaforge/internal/orchestrator"
	"github.com/mrz1836/qaforge/internal/steps"
	"github.com/mrz1836/qaforge/internal/testutil"
)

func TestParseSteps(t *testing.T) {
	names, err := orchestrator.ParseSteps("combinatorial, variants,variants")
	require.NoError(t, err)
	assert.Equal(t, []domain.StepName{domain.StepVariants, domain.StepCombinatorial}, names)

	_, err = orchestrator.ParseSteps("variants,deploy")
	require.ErrorIs(t, err, errors.ErrUnknownStep)

	_, err = orchestrator.ParseSteps(" , ")
	require.ErrorIs(t, err, errors.ErrNoSteps)

	assert.Equal(t, domain.PipelineOrder, orchestrator.AllSteps())
}

func TestProcessScenario_AllSteps(t *testing.T) {
	root := t.TempDir()
	runner := newArtifactRunner()
	o := orchestrator.New(testCatalog(t), testRegistry(runner), orchestrator.Config{
		Root:          root,
		ScenariosFile: scenariosFile(t),
	}, zerolog.Nop())

	result := o.ProcessScenario(testutil.Context(), "TS-001", orchestrator.AllSteps())

	assert.Equal(t, constants.ScenarioStatusSuccess, result.Status, result.Error)
	assert.Equal(t, "Login", result.Title)
	require.Len(t, result.Steps, 4)
	for i, step := range result.Steps {
		assert.Equal(t, domain.PipelineOrder[i], step.Step)
		assert.Equal(t, constants.StepStatusSuccess, step.Status)
	}

	variants, _ := result.Step(domain.StepVariants)
	assert.InDelta(t, 4.0, variants.Metric(domain.MetricVariantCount), 0)
	plan, _ := result.Step(domain.StepCombinatorial)
	assert.InDelta(t, 100.0, plan.Metric(domain.MetricCoveragePct), 0)
	assert.InDelta(t, 3.0, plan.Metric(domain.MetricOptimizedCount), 0)

	paths := artifact.PathsIn(filepath.Join(root, "TS-001_Login"))
	assert.Equal(t, paths.Variants, result.Artifacts[domain.StepVariants])
	assert.FileExists(t, paths.Metrics)
	assert.FileExists(t, paths.TestData)
}

func TestProcessScenario_PreconditionEnforced(t *testing.T) {
	root := t.TempDir()
	runner := newArtifactRunner()
	o := orchestrator.New(testCatalog(t), testRegistry(runner), orchestrator.Config{Root: root}, zerolog.Nop())

	result := o.ProcessScenario(testutil.Context(), "TS-001", []domain.StepName{domain.StepTestData})

	assert.Equal(t, constants.ScenarioStatusFailed, result.Status)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, constants.StepStatusFailed, result.Steps[0].Status)
	assert.Contains(t, result.Error, "variants file not found")
	assert.Zero(t, runner.count(domain.StepTestData), "collaborator must not be invoked")
	assert.NoFileExists(t, artifact.PathsIn(filepath.Join(root, "TS-001_Login")).TestData)
}

func TestProcessScenario_PartialAfterLaterFailure(t *testing.T) {
	runner := newArtifactRunner()
	runner.fail[domain.StepScripts] = true
	o := orchestrator.New(testCatalog(t), testRegistry(runner), orchestrator.Config{
		Root:          t.TempDir(),
		ScenariosFile: scenariosFile(t),
	}, zerolog.Nop())

	result := o.ProcessScenario(testutil.Context(), "TS-002", orchestrator.AllSteps())

	assert.Equal(t, constants.ScenarioStatusPartial, result.Status)
	assert.Equal(t, 2, result.Completed())
	require.Len(t, result.Steps, 4)
	assert.Equal(t, constants.StepStatusFailed, result.Steps[2].Status)
	assert.Contains(t, result.Steps[2].Error, "collaborator exploded")
	assert.Equal(t, constants.StepStatusSkipped, result.Steps[3].Status)
	assert.Zero(t, result.Steps[3].Duration)
	assert.Zero(t, runner.count(domain.StepCombinatorial), "steps after a failure never run")
	assert.Contains(t, result.Error, "scenario TS-002 step scripts")
}

func TestProcessScenario_UnknownScenario(t *testing.T) {
	o := orchestrator.New(testCatalog(t), testRegistry(newArtifactRunner()), orchestrator.Config{Root: t.TempDir()}, zerolog.Nop())

	result := o.ProcessScenario(testutil.Context(), "TS-999", orchestrator.AllSteps())

	assert.Equal(t, constants.ScenarioStatusFailed, result.Status)
	assert.Empty(t, result.Steps)
	assert.Contains(t, result.Error, "TS-999")
}

func TestRun_InvalidAxesFailOnlyThatScenario(t *testing.T) {
	global := domain.Axes{{Name: "Browser", Values: []string{"Chrome", "Firefox"}}}
	cat, err := catalog.New(global, []domain.ScenarioDefinition{
		{ID: "TS-001", Title: "Login", Parameters: domain.Axes{{Name: "Input", Values: []string{"Valid", "Invalid"}}}},
		{ID: "TS-002", Title: "Broken", Parameters: domain.Axes{{Name: "Payment", Values: nil}}},
	})
	require.NoError(t, err)

	runner := newArtifactRunner()
	o := orchestrator.New(cat, testRegistry(runner), orchestrator.Config{
		Root:          t.TempDir(),
		ScenariosFile: scenariosFile(t),
	}, zerolog.Nop())

	report, err := o.Run(testutil.Context(), []string{"TS-001", "TS-002"}, orchestrator.AllSteps())
	require.NoError(t, err)
	require.Len(t, report.Scenarios, 2)

	good, bad := report.Scenarios[0], report.Scenarios[1]
	assert.Equal(t, constants.ScenarioStatusSuccess, good.Status)
	assert.Equal(t, 4, good.Completed())

	assert.Equal(t, constants.ScenarioStatusFailed, bad.Status)
	assert.Empty(t, bad.Steps)
	assert.Contains(t, bad.Error, "axis has no values")

	assert.Equal(t, 1, runner.count(domain.StepTestData), "the broken scenario never reaches a collaborator")
	assert.Equal(t, constants.ExitFailure, report.ExitCode())
}

func TestRun_FailureIsolation(t *testing.T) {
	for _, parallel := range []int{1, 3} {
		t.Run(map[int]string{1: "sequential", 3: "parallel"}[parallel], func(t *testing.T) {
			runner := newArtifactRunner()
			registry := testRegistry(runner)
			variants, err := registry.Get(domain.StepVariants)
			require.NoError(t, err)
			registry.Register(&faultyExecutor{Executor: variants, failFor: map[string]bool{"TS-002": true}})

			o := orchestrator.New(testCatalog(t), registry, orchestrator.Config{
				Root:          t.TempDir(),
				ScenariosFile: scenariosFile(t),
				Parallel:      parallel,
			}, zerolog.Nop())

			report, err := o.Run(testutil.Context(), []string{"TS-001", "TS-002", "TS-003"}, orchestrator.AllSteps())
			require.NoError(t, err)
			require.Len(t, report.Scenarios, 3)

			for i, id := range []string{"TS-001", "TS-002", "TS-003"} {
				assert.Equal(t, id, report.Scenarios[i].ScenarioID, "results keep request order")
			}
			assert.Equal(t, constants.ScenarioStatusSuccess, report.Scenarios[0].Status)
			assert.Equal(t, constants.ScenarioStatusFailed, report.Scenarios[1].Status)
			assert.Zero(t, report.Scenarios[1].Completed())
			assert.Equal(t, constants.ScenarioStatusSuccess, report.Scenarios[2].Status)

			assert.Equal(t, 2, report.StatusCounts[constants.ScenarioStatusSuccess])
			assert.Equal(t, 1, report.StatusCounts[constants.ScenarioStatusFailed])
			assert.Equal(t, 8, report.Totals.Variants)
			assert.Equal(t, 2, report.StepStats[domain.StepTestData].Success)
			assert.Equal(t, 1, report.StepStats[domain.StepTestData].Skipped)
			assert.Len(t, report.Failed(), 1)
			assert.Equal(t, constants.ExitFailure, report.ExitCode())
		})
	}
}

// A batch of only partial and success outcomes exits 0 on purpose: the
// exit code signals outright failures, not incomplete pipelines.
func TestRun_PartialBatchExitsSuccessfully(t *testing.T) {
	runner := newArtifactRunner()
	runner.fail[domain.StepCombinatorial] = true
	o := orchestrator.New(testCatalog(t), testRegistry(runner), orchestrator.Config{Root: t.TempDir()}, zerolog.Nop())

	report, err := o.Run(testutil.Context(), []string{"TS-001", "TS-003"}, []domain.StepName{domain.StepVariants, domain.StepCombinatorial})
	require.NoError(t, err)

	assert.Equal(t, 2, report.StatusCounts[constants.ScenarioStatusPartial])
	assert.Equal(t, constants.ExitSuccess, report.ExitCode())
}

func TestRun_WritesReport(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "scenarios")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	o := orchestrator.New(testCatalog(t), testRegistry(newArtifactRunner()), orchestrator.Config{
		Root:        root,
		WriteReport: true,
	}, zerolog.Nop(), orchestrator.WithClock(clock.NewStepping(start, time.Second)))

	report, err := o.Run(testutil.Context(), []string{"TS-001"}, []domain.StepName{domain.StepVariants})
	require.NoError(t, err)

	want := filepath.Join(base, constants.SummaryDirName, constants.ReportFileName)
	assert.Equal(t, want, report.Path)
	assert.Equal(t, start, report.StartedAt)
	assert.Positive(t, report.Duration)

	data, err := os.ReadFile(want) //nolint:gosec // test path
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.RunID, decoded["run_id"])
	assert.Contains(t, decoded, "step_stats")
}

func TestRun_Validation(t *testing.T) {
	o := orchestrator.New(testCatalog(t), testRegistry(newArtifactRunner()), orchestrator.Config{Root: t.TempDir()}, zerolog.Nop())

	_, err := o.Run(testutil.Context(), nil, orchestrator.AllSteps())
	require.ErrorIs(t, err, errors.ErrNoScenarios)

	_, err = o.Run(testutil.Context(), []string{"TS-001"}, []domain.StepName{"deploy"})
	require.ErrorIs(t, err, errors.ErrUnknownStep)

	partial := steps.NewRegistry()
	partial.Register(steps.NewVariantsExecutor())
	o = orchestrator.New(testCatalog(t), partial, orchestrator.Config{Root: t.TempDir()}, zerolog.Nop())
	_, err = o.Run(testutil.Context(), []string{"TS-001"}, []domain.StepName{domain.StepScripts})
	require.ErrorIs(t, err, errors.ErrUnknownStep)
}

func TestRun_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.Context())
	defer cancel()

	var mu sync.Mutex
	var seen []string
	o := orchestrator.New(testCatalog(t), testRegistry(newArtifactRunner()), orchestrator.Config{Root: t.TempDir()}, zerolog.Nop(),
		orchestrator.WithProgress(func(r *domain.ScenarioResult, completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, r.ScenarioID)
			assert.Equal(t, 3, total)
			assert.Equal(t, len(seen), completed)
			cancel()
		}))

	report, err := o.Run(ctx, []string{"TS-001", "TS-002", "TS-003"}, []domain.StepName{domain.StepVariants})
	require.ErrorIs(t, err, errors.ErrInterrupted)
	require.NotNil(t, report)

	assert.True(t, report.Interrupted)
	assert.Equal(t, []string{"TS-001"}, seen)
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, constants.ScenarioStatusSuccess, report.Scenarios[0].Status)
	assert.Equal(t, []string{"TS-002", "TS-003"}, report.NotStarted)
	assert.Equal(t, constants.ExitInterrupted, report.ExitCode())
}

func TestRun_RootLocked(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the lock timeout")
	}
	root := t.TempDir()
	held, err := flock.Acquire(context.Background(), filepath.Join(root, constants.LockFileName), time.Second)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	o := orchestrator.New(testCatalog(t), testRegistry(newArtifactRunner()), orchestrator.Config{Root: root}, zerolog.Nop())
	_, err = o.Run(testutil.Context(), []string{"TS-001"}, []domain.StepName{domain.StepVariants})
	require.ErrorIs(t, err, errors.ErrRootLocked)
}
