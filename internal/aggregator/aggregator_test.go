package aggregator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/qaforge/internal/aggregator"
	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/clock"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/testutil"
	"github.com/mrz1836/qaforge/internal/variant"
)

var collectedAt = time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

// seedRoot lays out two generated scenarios (3 and 5 variants) plus noise
// the aggregator must ignore.
func seedRoot(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "scenarios")
	gen := variant.NewGenerator(root, nil)

	login := domain.ScenarioDefinition{ID: "TS-001", Title: "Login Flow", Parameters: domain.Axes{
		{Name: "Input", Values: []string{"Valid", "Invalid", "Empty"}},
	}}
	search := domain.ScenarioDefinition{ID: "TS-002", Title: "Search", Parameters: domain.Axes{
		{Name: "Query", Values: []string{"A", "B", "C", "D", "E"}},
	}}
	for _, def := range []domain.ScenarioDefinition{search, login} {
		_, err := gen.GenerateScenario(testutil.Context(), def)
		require.NoError(t, err)
	}

	loginPaths := artifact.PathsFor(root, login)
	testutil.WriteFile(t, loginPaths.TestData, "Variant_ID,User\nV00001,a\nV00002,b\nV00003,c\n")
	testutil.WriteFile(t, filepath.Join(loginPaths.ScriptsDir, "V00001.txt"), "steps")
	testutil.WriteFile(t, filepath.Join(loginPaths.ScriptsDir, "V00002.txt"), "steps")
	testutil.WriteFile(t, filepath.Join(loginPaths.ScriptsDir, "notes.md"), "not a script")
	testutil.WriteFile(t, loginPaths.Plan, "# Plan\n**Coverage Percentage:** 96.5%\n**Test Cases Generated:** 2\n")

	testutil.WriteFile(t, filepath.Join(root, "README.md"), "loose file")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scratch"), 0o750))
	return root
}

func TestParseReports(t *testing.T) {
	r, err := aggregator.ParseReports([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, aggregator.Reports{Dashboard: true, Index: true}, r)

	r, err = aggregator.ParseReports([]string{"index"})
	require.NoError(t, err)
	assert.Equal(t, aggregator.Reports{Index: true}, r)

	r, err = aggregator.ParseReports([]string{"metrics, index"})
	require.NoError(t, err)
	assert.Equal(t, aggregator.Reports{Dashboard: true, Index: true}, r)

	_, err = aggregator.ParseReports([]string{"metrics", "pdf"})
	require.ErrorIs(t, err, errors.ErrUnknownReport)
}

func TestCollect(t *testing.T) {
	root := seedRoot(t)
	var logs bytes.Buffer
	agg := aggregator.New(root, zerolog.New(&logs), aggregator.WithClock(clock.NewStepping(collectedAt, 0)))

	coll, err := agg.Collect(testutil.Context())
	require.NoError(t, err)
	require.Len(t, coll.Scenarios, 2)
	assert.Equal(t, collectedAt, coll.CollectedAt)

	login := coll.Scenarios[0]
	assert.Equal(t, "TS-001", login.ScenarioID)
	assert.Equal(t, "Login Flow", login.Title)
	assert.Equal(t, "TS-001_Login_Flow", login.Dir)
	assert.Equal(t, 3, login.VariantCount)
	assert.Equal(t, 3, login.TestDataCount)
	assert.Equal(t, 2, login.ScriptCount)
	assert.Equal(t, 2, login.OptimizedCount)
	assert.InDelta(t, 96.5, login.CoveragePct, 0.001)
	assert.Equal(t, map[string]int{"Input": 3}, login.Parameters)
	assert.Equal(t, "success", login.Status)

	search := coll.Scenarios[1]
	assert.Equal(t, 5, search.VariantCount)
	assert.Zero(t, search.TestDataCount)
	assert.Zero(t, search.ScriptCount)
	assert.Zero(t, search.OptimizedCount)

	assert.Equal(t, 8, coll.TotalVariants())
	assert.Contains(t, logs.String(), "discovery_warning")
	assert.Contains(t, logs.String(), "scratch")
	assert.NotContains(t, logs.String(), "README.md", "plain files are ignored silently")
}

func TestCollect_Tolerant(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scenarios")
	dir := filepath.Join(root, "TS-007_Broken_Things")
	testutil.WriteFile(t, filepath.Join(dir, constants.MetricsFileName), "{not json")
	testutil.WriteFile(t, filepath.Join(dir, constants.TestDataFileName), "")
	testutil.WriteFile(t, filepath.Join(dir, constants.PlanFileName), "no numbers here")

	coll, err := aggregator.New(root, zerolog.Nop()).Collect(testutil.Context())
	require.NoError(t, err)
	require.Len(t, coll.Scenarios, 1)

	s := coll.Scenarios[0]
	assert.Equal(t, "TS-007", s.ScenarioID)
	assert.Equal(t, "Broken Things", s.Title)
	assert.Zero(t, s.VariantCount)
	assert.Zero(t, s.TestDataCount)
	assert.Zero(t, s.OptimizedCount)
	assert.Equal(t, "unknown", s.Status)
}

func TestCollect_MissingRoot(t *testing.T) {
	_, err := aggregator.New(filepath.Join(t.TempDir(), "nope"), zerolog.Nop()).Collect(testutil.Context())
	require.ErrorIs(t, err, errors.ErrScenariosRootNotFound)
}

func TestDashboard(t *testing.T) {
	coll := &aggregator.Collection{
		Root:        "deliverables/scenarios",
		CollectedAt: collectedAt,
		Scenarios: []domain.ScenarioSummary{
			{ScenarioID: "TS-001", Title: "Checkout with a very long title that keeps going on", VariantCount: 1200, OptimizedCount: 24, CoveragePct: 100, TestDataCount: 1200},
			{ScenarioID: "TS-002", Title: "Login | SSO", VariantCount: 8},
			{ScenarioID: "TS-003", Title: "Empty"},
		},
	}

	out := string(coll.Dashboard())

	assert.Contains(t, out, "**Generated:** 2026-05-04 12:30:00")
	assert.Contains(t, out, "- **Total Scenarios:** 3")
	assert.Contains(t, out, "- **Total Variants (Exhaustive):** 1,208")
	assert.Contains(t, out, "- **Total Test Data Rows:** 1,200")
	assert.NotContains(t, out, "Total Test Scripts", "zero totals are omitted")
	assert.Contains(t, out, "- **Overall Reduction:** 98.0%")
	assert.Contains(t, out, "- **Min:** 8 variants (TS-002: Login | SSO)")
	assert.Contains(t, out, "- **Max:** 1,200 variants (TS-001:")
	assert.Contains(t, out, "| 1 | TS-001 | Checkout with a very long title that kee | 1,200 |")
	assert.Contains(t, out, `| 2 | TS-002 | Login \| SSO | 8 |`)
	assert.NotContains(t, out, "| 3 | TS-003", "scenarios without variants are not ranked")
	assert.Contains(t, out, "| TS-001 | 1,200 | 24 | 98.0% | 100.0% |")
	assert.Contains(t, out, "| TS-002 | ✓ (8) | ✗ (0) | ✗ (0) | ✗ (0) |")
	assert.Contains(t, out, "| TS-003 | ✗ (0) |")
}

func TestRun_WritesReports(t *testing.T) {
	root := seedRoot(t)
	agg := aggregator.New(root, zerolog.Nop(), aggregator.WithClock(clock.NewStepping(collectedAt, 0)))

	result, err := agg.Run(testutil.Context(), aggregator.Reports{Dashboard: true, Index: true}, true)
	require.NoError(t, err)

	summary := filepath.Join(filepath.Dir(root), constants.SummaryDirName)
	assert.Equal(t, summary, result.SummaryDir)
	assert.Equal(t, 2, result.Scenarios)
	assert.Equal(t, 8, result.TotalVariants)
	assert.Equal(t, 8, result.CombinedVariants)
	assert.Len(t, result.Files, 3)

	assert.FileExists(t, filepath.Join(summary, constants.DashboardFileName))

	data, err := os.ReadFile(filepath.Join(summary, constants.IndexFileName)) //nolint:gosec // test path
	require.NoError(t, err)
	var index aggregator.Index
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Equal(t, 2, index.TotalScenarios)
	assert.Equal(t, root, index.ScenariosDir)
	assert.Equal(t, "TS-001_Login_Flow", index.Scenarios[0].Dir)
	assert.True(t, index.GeneratedAt.Equal(collectedAt))

	// Scenario artifacts stay untouched.
	assert.NoDirExists(t, filepath.Join(root, constants.SummaryDirName))
}

// The combined table bridges the two numbering scopes: each scenario keeps
// V00001.. in its own file, the combined table renumbers across the batch.
func TestCombineVariants_RenumbersAcrossScenarios(t *testing.T) {
	root := seedRoot(t)
	agg := aggregator.New(root, zerolog.Nop())
	coll, err := agg.Collect(testutil.Context())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), constants.CombinedVariantsFileName)
	n, err := coll.CombineVariants(testutil.Context(), out)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	rows, err := artifact.ReadVariants(out)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	for i, row := range rows {
		assert.Equal(t, variant.FormatID(i+1), row.ID)
	}
	assert.Equal(t, "TS-001", rows[2].ScenarioID)
	assert.Equal(t, "TS-002", rows[3].ScenarioID)
	assert.Equal(t, "V00004", rows[3].ID)
	assert.Equal(t, constants.MissingValue, rows[0].Values["Query"])
	assert.Equal(t, constants.MissingValue, rows[7].Values["Input"])

	own, err := artifact.ReadVariants(artifact.PathsIn(filepath.Join(root, "TS-002_Search")).Variants)
	require.NoError(t, err)
	assert.Equal(t, "V00001", own[0].ID, "per-scenario numbering is left alone")
}

func TestCombineVariants_Empty(t *testing.T) {
	coll := &aggregator.Collection{Root: t.TempDir()}
	out := filepath.Join(t.TempDir(), constants.CombinedVariantsFileName)

	n, err := coll.CombineVariants(testutil.Context(), out)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoFileExists(t, out)
}

func TestWatch(t *testing.T) {
	root := seedRoot(t)
	agg := aggregator.New(root, zerolog.Nop())

	ctx, cancel := context.WithCancel(testutil.Context())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- agg.Watch(ctx, 20*time.Millisecond, func(context.Context) error {
			calls <- struct{}{}
			return nil
		})
	}()

	waitCall := func(what string) {
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("no refresh after %s", what)
		}
	}

	waitCall("start")
	testutil.WriteFile(t, filepath.Join(root, "TS-001_Login_Flow", constants.TestDataFileName), "Variant_ID\nV00001\n")
	waitCall("write")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
