// Package constants provides centralized constant values used throughout qaforge.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Per-scenario artifact file names. Every scenario directory owns exactly
// these paths; no two scenarios ever write the same file.
const (
	// VariantsFileName is the tabular file holding one row per variant.
	VariantsFileName = "variants.csv"

	// MetricsFileName is the structured ScenarioMetrics record.
	MetricsFileName = "metrics.json"

	// TestDataFileName is the collaborator-produced test data table.
	TestDataFileName = "test_data.csv"

	// ScriptsDirName is the directory of collaborator-rendered test scripts.
	ScriptsDirName = "scripts"

	// ScriptFileExt is the extension counted as one script artifact.
	ScriptFileExt = ".txt"

	// PlanFileName is the collaborator-produced combinatorial plan report.
	PlanFileName = "combinatorial_plan.md"
)

// Aggregate output names, written under the summary directory.
const (
	// SummaryDirName is the directory sibling to the scenarios root.
	SummaryDirName = "summary"

	// DashboardFileName is the human-readable metrics dashboard.
	DashboardFileName = "metrics_dashboard.md"

	// IndexFileName is the machine-readable scenario index.
	IndexFileName = "scenario_index.json"

	// CombinedVariantsFileName is the globally renumbered variant set.
	CombinedVariantsFileName = "all_variants.csv"

	// ReportFileName is the orchestration batch report.
	ReportFileName = "orchestration_report.json"

	// MonolithicFileName is the single-file variant set of the legacy mode.
	MonolithicFileName = "all_scenarios_variants.csv"
)

// Variant table layout.
const (
	// ColumnScenarioID is the first column of every variants table.
	ColumnScenarioID = "Scenario_ID"

	// ColumnVariantID is the second column of every variants table.
	ColumnVariantID = "Variant_ID"

	// MissingValue fills cells for axes a row does not define.
	MissingValue = "N/A"

	// VariantIDFormat renders a sequential variant number.
	VariantIDFormat = "V%05d"
)

// Limits applied to names and counts.
const (
	// MaxDirNameLength bounds the sanitized title part of a scenario directory.
	MaxDirNameLength = 50

	// UntitledDirName replaces a title with nothing left after sanitizing.
	UntitledDirName = "scenario"

	// MaxDashboardTitleWidth bounds titles in the top-10 dashboard table.
	MaxDashboardTitleWidth = 40

	// LargeVariantCount is the size above which expansion logs a warning.
	// Expansion never refuses a count.
	LargeVariantCount = 100_000

	// TopScenarioCount is the number of rows in the dashboard top list.
	TopScenarioCount = 10

	// MaxOutputExcerpt bounds how much collaborator output is kept in a
	// step error.
	MaxOutputExcerpt = 2048
)

// Timeout configurations for pipeline operations.
const (
	// DefaultStepTimeout bounds a single collaborator invocation.
	DefaultStepTimeout = 600 * time.Second

	// ProcessTerminationTimeout is how long a timed-out collaborator gets
	// to exit after being signalled.
	ProcessTerminationTimeout = 2 * time.Second

	// WatchDebounce is the quiet period before a watch-mode re-aggregation.
	WatchDebounce = 500 * time.Millisecond
)

// File locking for the scenarios root.
const (
	// LockFileName is created under the scenarios root for the duration of a batch.
	LockFileName = ".qaforge.lock"

	// LockRetryInterval is the delay between lock acquisition attempts.
	LockRetryInterval = 50 * time.Millisecond

	// LockTimeout is how long a batch waits for another batch to release the root.
	LockTimeout = 2 * time.Second
)

// Process exit codes.
const (
	// ExitSuccess means no scenario ended in failed status.
	ExitSuccess = 0

	// ExitFailure means at least one scenario ended in failed status.
	ExitFailure = 1

	// ExitInvalidInput means the invocation was rejected before any scenario ran.
	ExitInvalidInput = 2

	// ExitInterrupted means the batch was stopped by SIGINT or SIGTERM.
	ExitInterrupted = 130
)
