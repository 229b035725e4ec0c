package domain

import (
	"time"

	"github.com/mrz1836/qaforge/internal/constants"
)

// StepName identifies one stage of the per-scenario pipeline.
type StepName string

// Pipeline steps in their fixed execution order.
const (
	StepVariants      StepName = "variants"
	StepTestData      StepName = "test-data"
	StepScripts       StepName = "scripts"
	StepCombinatorial StepName = "combinatorial"
)

// PipelineOrder is the total order every scenario's steps follow,
// regardless of which subset is requested.
//
//nolint:gochecknoglobals // fixed ordering table
var PipelineOrder = []StepName{StepVariants, StepTestData, StepScripts, StepCombinatorial}

// String returns the step name.
func (s StepName) String() string {
	return string(s)
}

// Rank returns the position of the step in PipelineOrder, or -1.
func (s StepName) Rank() int {
	for i, name := range PipelineOrder {
		if name == s {
			return i
		}
	}
	return -1
}

// Step metric keys recorded in StepResult.Metrics.
const (
	MetricVariantCount         = "variant_count"
	MetricExpectedVariantCount = "expected_variant_count"
	MetricRowCount             = "row_count"
	MetricScriptCount          = "script_count"
	MetricCoveragePct          = "coverage_pct"
	MetricOptimizedCount       = "optimized_count"
)

// StepResult captures the outcome of executing one step for one scenario.
//
// Example JSON representation:
//
//	{
//	    "step": "test-data",
//	    "status": "success",
//	    "duration": 1250000000,
//	    "output": "deliverables/scenarios/TS-001_.../test_data.csv",
//	    "metrics": {"row_count": 216}
//	}
type StepResult struct {
	// Step identifies which step produced this result.
	Step StepName `json:"step"`

	// Status is success, failed or skipped.
	Status constants.StepStatus `json:"status"`

	// Duration is how long the step took. Skipped steps have zero duration.
	Duration time.Duration `json:"duration"`

	// Output points to the artifact the step produced.
	Output string `json:"output,omitempty"`

	// Error contains the failure cause when Status is failed.
	Error string `json:"error,omitempty"`

	// Metrics holds step-specific numbers keyed by the Metric* constants.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Metric returns a recorded metric or zero.
func (r *StepResult) Metric(key string) float64 {
	if r == nil || r.Metrics == nil {
		return 0
	}
	return r.Metrics[key]
}

// ScenarioResult aggregates the StepResults of one scenario in a batch.
type ScenarioResult struct {
	ScenarioID string                   `json:"scenario_id"`
	Title      string                   `json:"title,omitempty"`
	Status     constants.ScenarioStatus `json:"status"`
	Steps      []StepResult             `json:"steps"`
	Duration   time.Duration            `json:"duration"`
	Artifacts  map[StepName]string      `json:"artifacts,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Completed returns the number of steps that succeeded.
func (r *ScenarioResult) Completed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == constants.StepStatusSuccess {
			n++
		}
	}
	return n
}

// Step returns the result for a given step, if it was recorded.
func (r *ScenarioResult) Step(name StepName) (*StepResult, bool) {
	for i := range r.Steps {
		if r.Steps[i].Step == name {
			return &r.Steps[i], true
		}
	}
	return nil, false
}

// ScenarioSummary is reconstructed from disk by the aggregator. It is derived
// data; the per-scenario files stay the source of truth.
type ScenarioSummary struct {
	ScenarioID     string         `json:"scenario_id"`
	Title          string         `json:"title"`
	Dir            string         `json:"directory"`
	VariantCount   int            `json:"variant_count"`
	TestDataCount  int            `json:"test_data_count"`
	ScriptCount    int            `json:"script_count"`
	OptimizedCount int            `json:"optimized_count"`
	CoveragePct    float64        `json:"coverage_pct"`
	Parameters     map[string]int `json:"parameters"`
	Status         string         `json:"status"`
}

// HasVariants reports whether the variants artifact was found.
func (s ScenarioSummary) HasVariants() bool { return s.VariantCount > 0 }

// HasTestData reports whether the test-data artifact had rows.
func (s ScenarioSummary) HasTestData() bool { return s.TestDataCount > 0 }

// HasScripts reports whether any script artifacts were found.
func (s ScenarioSummary) HasScripts() bool { return s.ScriptCount > 0 }

// HasPlan reports whether the combinatorial report produced a case count.
func (s ScenarioSummary) HasPlan() bool { return s.OptimizedCount > 0 }
