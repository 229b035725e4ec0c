package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/constants"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/orchestrator"
)

func TestCatalogList_JSON(t *testing.T) {
	p := newProject(t, nil)

	out, err := p.execute(t, "--output", "json", "catalog", "list")
	require.NoError(t, err)

	var entries []catalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "TS-001", entries[0].ID)
	assert.Equal(t, []string{"Input", "Browser"}, entries[0].Axes)
	assert.Equal(t, 6, entries[0].ExpectedVariants)
	assert.Equal(t, 4, entries[1].ExpectedVariants)
}

func TestCatalogShow(t *testing.T) {
	p := newProject(t, nil)

	out, err := p.execute(t, "--output", "json", "catalog", "show", "ts-002")
	require.NoError(t, err)

	var detail scenarioDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "Search", detail.Title)
	assert.Equal(t, []string{"Query", "Browser"}, detail.Axes.Names())
	assert.Equal(t, 4, detail.ExpectedVariants)

	_, err = p.execute(t, "catalog", "show", "TS-999")
	require.ErrorIs(t, err, qaerrors.ErrUnknownScenario)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestVariants_SelectionRequired(t *testing.T) {
	p := newProject(t, nil)

	_, err := p.execute(t, "variants")
	require.ErrorIs(t, err, qaerrors.ErrSelectionRequired)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))

	_, err = p.execute(t, "variants", "--all", "--monolithic")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestVariants_PerScenario(t *testing.T) {
	p := newProject(t, nil)

	out, err := p.execute(t, "--output", "json", "variants", "--all")
	require.NoError(t, err)

	var resp variantsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 10, resp.TotalVariants)
	require.Len(t, resp.Scenarios, 2)

	dir := filepath.Join(p.root, "TS-001_Login_Flow")
	variants, err := artifact.ReadVariants(filepath.Join(dir, constants.VariantsFileName))
	require.NoError(t, err)
	require.Len(t, variants, 6)
	assert.Equal(t, "V00001", variants[0].ID)

	metrics, err := artifact.ReadMetrics(filepath.Join(dir, constants.MetricsFileName))
	require.NoError(t, err)
	assert.Equal(t, 6, metrics.VariantCount)
	assert.Equal(t, constants.MetricsStatusSuccess, metrics.Status)

	// TS-002 restarts numbering.
	variants, err = artifact.ReadVariants(filepath.Join(p.root, "TS-002_Search", constants.VariantsFileName))
	require.NoError(t, err)
	assert.Equal(t, "V00001", variants[0].ID)
}

func TestVariants_UnknownScenarioFailsBatch(t *testing.T) {
	p := newProject(t, nil)

	out, err := p.execute(t, "--output", "json", "variants", "--scenarios", "TS-001,TS-999")
	require.Error(t, err)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	var resp variantsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Success)
	require.Len(t, resp.Scenarios, 2)
	assert.Equal(t, "success", resp.Scenarios[0].Status)
	assert.Equal(t, "failed", resp.Scenarios[1].Status)
	assert.Contains(t, resp.Scenarios[1].Error, "TS-999")

	assert.FileExists(t, filepath.Join(p.root, "TS-001_Login_Flow", constants.VariantsFileName))
}

func TestVariants_Monolithic(t *testing.T) {
	p := newProject(t, nil)
	file := filepath.Join(p.dir, "all.csv")

	_, err := p.execute(t, "variants", "--monolithic", "--file", file)
	require.NoError(t, err)

	variants, err := artifact.ReadVariants(file)
	require.NoError(t, err)
	require.Len(t, variants, 10)
	assert.Equal(t, "V00007", variants[6].ID)
	assert.Equal(t, "TS-002", variants[6].ScenarioID)
	assert.NoDirExists(t, filepath.Join(p.root, "TS-001_Login_Flow"))
}

func TestVariants_MonolithicSkipsInvalidScenario(t *testing.T) {
	p := newProject(t, nil)
	catalog := `
global_parameters:
  Browser: [Chrome, Firefox]
scenarios:
  TS-001:
    title: Login Flow
    parameters:
      Input: [Valid, Invalid, Empty]
  TS-002:
    title: Search
    parameters:
      Query: [Short, Short]
`
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, "catalog.yaml"), []byte(catalog), 0o600))
	file := filepath.Join(p.dir, "all.csv")

	out, err := p.execute(t, "--output", "json", "variants", "--monolithic", "--file", file)
	require.ErrorIs(t, err, qaerrors.ErrBatchFailed)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	var resp monolithicResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 6, resp.TotalVariants)
	assert.Contains(t, resp.Skipped, "TS-002")

	variants, err := artifact.ReadVariants(file)
	require.NoError(t, err)
	assert.Len(t, variants, 6)
}

func runReport(t *testing.T, out string) orchestrator.Report {
	t.Helper()
	var report orchestrator.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	return report
}

func TestRun_VariantsOnly(t *testing.T) {
	p := newProject(t, nil)

	out, err := p.execute(t, "--output", "json", "run", "--all", "--steps", "variants", "--parallel", "2")
	require.NoError(t, err)

	report := runReport(t, out)
	require.Len(t, report.Scenarios, 2)
	assert.Equal(t, 2, report.StatusCounts[constants.ScenarioStatusSuccess])
	assert.Equal(t, 10, report.Totals.Variants)
	assert.Equal(t, 2, report.Parallel)
	assert.FileExists(t, filepath.Join(artifact.SummaryDir(p.root), constants.ReportFileName))
}

func TestRun_AllSteps(t *testing.T) {
	p := newProject(t, func(cfg *config.Config) {
		cfg.Collaborators.TestData = writesFile("id\n1\n2\n3\n", "{{.TestDataFile}}")
		cfg.Collaborators.Scripts = []string{"sh", "-c", `mkdir -p "$0" && touch "$0/a.txt" "$0/b.txt"`, "{{.ScriptsDir}}"}
		cfg.Collaborators.Combinatorial = writesFile("Coverage Percentage: 92.5%\nTest Cases Generated: 4\n", "{{.PlanFile}}")
	})
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, "scenarios.md"), []byte("# Scenarios\n"), 0o600))

	out, err := p.execute(t, "--output", "json", "run", "--scenario", "TS-001", "--all-steps")
	require.NoError(t, err)

	report := runReport(t, out)
	require.Len(t, report.Scenarios, 1)
	result := report.Scenarios[0]
	assert.Equal(t, constants.ScenarioStatusSuccess, result.Status)
	require.Len(t, result.Steps, 4)
	assert.Equal(t, 3, report.Totals.TestDataRows)
	assert.Equal(t, 2, report.Totals.Scripts)
	assert.Equal(t, 4, report.Totals.OptimizedCases)
	assert.InDelta(t, 92.5, report.Totals.MeanCoverage, 0.001)
}

func TestRun_PartialIsBestEffort(t *testing.T) {
	p := newProject(t, func(cfg *config.Config) {
		cfg.Collaborators.TestData = failsWith("no faker installed")
	})

	out, err := p.execute(t, "--output", "json", "run", "--all", "--steps", "variants,test-data,scripts")
	require.NoError(t, err)

	report := runReport(t, out)
	assert.Equal(t, 2, report.StatusCounts[constants.ScenarioStatusPartial])
	for _, r := range report.Scenarios {
		require.Len(t, r.Steps, 3)
		assert.Equal(t, constants.StepStatusSuccess, r.Steps[0].Status)
		assert.Equal(t, constants.StepStatusFailed, r.Steps[1].Status)
		assert.Contains(t, r.Steps[1].Error, "no faker installed")
		assert.Equal(t, constants.StepStatusSkipped, r.Steps[2].Status)
	}
}

func TestRun_FailedScenarioExitsOne(t *testing.T) {
	p := newProject(t, nil)

	// Without variants the test-data precondition fails.
	out, err := p.execute(t, "--output", "json", "run", "--scenario", "TS-002", "--steps", "test-data")
	require.Error(t, err)
	require.ErrorIs(t, err, qaerrors.ErrBatchFailed)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	report := runReport(t, out)
	require.Len(t, report.Scenarios, 1)
	assert.Equal(t, constants.ScenarioStatusFailed, report.Scenarios[0].Status)
	assert.Contains(t, report.Scenarios[0].Error, "variants file not found")
}

func TestRun_TextOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	p := newProject(t, nil)

	out, err := executeCmd(t, "--config", p.config, "run", "--scenarios", "TS-001,TS-002", "--steps", "variants")
	require.NoError(t, err)

	assert.Contains(t, out, "[1/2] TS-001")
	assert.Contains(t, out, "[2/2] TS-002")
	assert.Contains(t, out, "Orchestration summary")
	assert.Contains(t, out, "Successful: 2")
	assert.Contains(t, out, "Variants: 10")
	assert.Contains(t, out, constants.ReportFileName)
}

func TestRun_InvalidInput(t *testing.T) {
	p := newProject(t, nil)

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{name: "no scenarios", args: []string{"run", "--all-steps"}, is: qaerrors.ErrSelectionRequired},
		{name: "no steps", args: []string{"run", "--all"}, is: qaerrors.ErrSelectionRequired},
		{name: "unknown step", args: []string{"run", "--all", "--steps", "variants,deploy"}, is: qaerrors.ErrUnknownStep},
		{name: "empty step list", args: []string{"run", "--all", "--steps", " , "}, is: qaerrors.ErrNoSteps},
		{name: "negative parallel", args: []string{"run", "--all", "--all-steps", "--parallel", "-1"}, is: qaerrors.ErrConfigInvalidPipeline},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.execute(t, tc.args...)
			require.ErrorIs(t, err, tc.is)
			assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
		})
	}

	assert.NoDirExists(t, p.root)
}

func TestSummary_WritesReports(t *testing.T) {
	p := newProject(t, nil)

	_, err := p.execute(t, "variants", "--all")
	require.NoError(t, err)

	out, err := p.execute(t, "--output", "json", "summary", "--combine-variants")
	require.NoError(t, err)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Scenarios)
	assert.Equal(t, 10, resp.TotalVariants)
	assert.Equal(t, 10, resp.CombinedVariants)
	assert.Len(t, resp.Files, 3)

	summaryDir := artifact.SummaryDir(p.root)
	assert.Equal(t, summaryDir, resp.SummaryDir)
	dashboard, err := os.ReadFile(filepath.Join(summaryDir, constants.DashboardFileName))
	require.NoError(t, err)
	assert.Contains(t, string(dashboard), "Login Flow")
	assert.FileExists(t, filepath.Join(summaryDir, constants.IndexFileName))
	assert.FileExists(t, filepath.Join(summaryDir, constants.CombinedVariantsFileName))
}

func TestSummary_ReportSelection(t *testing.T) {
	p := newProject(t, nil)
	_, err := p.execute(t, "variants", "--scenario", "TS-001")
	require.NoError(t, err)

	_, err = p.execute(t, "summary", "--reports", "index")
	require.NoError(t, err)

	summaryDir := artifact.SummaryDir(p.root)
	assert.FileExists(t, filepath.Join(summaryDir, constants.IndexFileName))
	assert.NoFileExists(t, filepath.Join(summaryDir, constants.DashboardFileName))

	_, err = p.execute(t, "summary", "--reports", "metrics,charts")
	require.ErrorIs(t, err, qaerrors.ErrUnknownReport)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestSummary_Show(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	p := newProject(t, nil)
	_, err := p.execute(t, "variants", "--all")
	require.NoError(t, err)

	out, err := executeCmd(t, "--config", p.config, "summary", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall Statistics")
	assert.Contains(t, out, "Aggregated 2 scenarios (10 variants)")
}

func TestSummary_MissingRoot(t *testing.T) {
	p := newProject(t, nil)

	_, err := p.execute(t, "summary")
	require.ErrorIs(t, err, qaerrors.ErrScenariosRootNotFound)
	assert.Equal(t, ExitError, ExitCodeForError(err))
}
