package orchestrator

import (
	"time"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
)

// Report is the outcome of one batch run.
type Report struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Duration    time.Duration     `json:"duration"`
	Steps       []domain.StepName `json:"steps"`
	Parallel    int               `json:"parallel"`
	Interrupted bool              `json:"interrupted"`

	// Scenarios holds one result per processed scenario, in request order.
	Scenarios []*domain.ScenarioResult `json:"scenarios"`

	// NotStarted lists scenarios never reached because the batch was
	// interrupted.
	NotStarted []string `json:"not_started,omitempty"`

	StatusCounts map[constants.ScenarioStatus]int `json:"status_counts"`
	StepStats    map[domain.StepName]*StepStats   `json:"step_stats"`
	Totals       Totals                           `json:"totals"`

	// Path is where the report was written, if it was.
	Path string `json:"-"`

	coverageSum     float64
	coverageSamples int
}

// StepStats tallies the outcomes of one step across the batch.
type StepStats struct {
	Success         int           `json:"success"`
	Failed          int           `json:"failed"`
	Skipped         int           `json:"skipped"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
}

// Totals sums the step metrics of successful steps across the batch.
type Totals struct {
	Variants       int     `json:"variants"`
	TestDataRows   int     `json:"test_data_rows"`
	Scripts        int     `json:"scripts"`
	OptimizedCases int     `json:"optimized_cases"`
	MeanCoverage   float64 `json:"mean_coverage_pct"`
}

func newReport(runID string, started time.Time, names []domain.StepName, parallel int) *Report {
	r := &Report{
		RunID:        runID,
		StartedAt:    started,
		Steps:        names,
		Parallel:     parallel,
		StatusCounts: make(map[constants.ScenarioStatus]int, 3),
		StepStats:    make(map[domain.StepName]*StepStats, len(names)),
	}
	for _, name := range names {
		r.StepStats[name] = &StepStats{}
	}
	return r
}

// add folds one scenario result into the counters. Callers serialize.
func (r *Report) add(result *domain.ScenarioResult) {
	r.StatusCounts[result.Status]++

	for i := range result.Steps {
		step := &result.Steps[i]
		stats, ok := r.StepStats[step.Step]
		if !ok {
			stats = &StepStats{}
			r.StepStats[step.Step] = stats
		}
		switch step.Status {
		case constants.StepStatusSuccess:
			stats.Success++
			r.addMetrics(step)
		case constants.StepStatusFailed:
			stats.Failed++
		case constants.StepStatusSkipped:
			stats.Skipped++
			continue
		}
		stats.TotalDuration += step.Duration
	}
}

func (r *Report) addMetrics(step *domain.StepResult) {
	switch step.Step {
	case domain.StepVariants:
		r.Totals.Variants += int(step.Metric(domain.MetricVariantCount))
	case domain.StepTestData:
		r.Totals.TestDataRows += int(step.Metric(domain.MetricRowCount))
	case domain.StepScripts:
		r.Totals.Scripts += int(step.Metric(domain.MetricScriptCount))
	case domain.StepCombinatorial:
		r.Totals.OptimizedCases += int(step.Metric(domain.MetricOptimizedCount))
		if _, ok := step.Metrics[domain.MetricCoveragePct]; ok {
			r.coverageSum += step.Metrics[domain.MetricCoveragePct]
			r.coverageSamples++
		}
	}
}

func (r *Report) finish(at time.Time) {
	r.FinishedAt = at
	r.Duration = at.Sub(r.StartedAt)
	for _, stats := range r.StepStats {
		if executed := stats.Success + stats.Failed; executed > 0 {
			stats.AverageDuration = stats.TotalDuration / time.Duration(executed)
		}
	}
	if r.coverageSamples > 0 {
		r.Totals.MeanCoverage = r.coverageSum / float64(r.coverageSamples)
	}
}

// Failed returns the results whose status is failed.
func (r *Report) Failed() []*domain.ScenarioResult {
	var out []*domain.ScenarioResult
	for _, s := range r.Scenarios {
		if s.Status == constants.ScenarioStatusFailed {
			out = append(out, s)
		}
	}
	return out
}

// ExitCode maps the batch outcome to a process exit code. A batch with only
// success and partial outcomes exits 0; any failed scenario gives 1. An
// interrupted batch gives the interrupt code.
func (r *Report) ExitCode() int {
	switch {
	case r.Interrupted:
		return constants.ExitInterrupted
	case r.StatusCounts[constants.ScenarioStatusFailed] > 0:
		return constants.ExitFailure
	default:
		return constants.ExitSuccess
	}
}

// Write stores the report as indented JSON at path.
func (r *Report) Write(path string) error {
	data, err := artifact.EncodeJSON(r)
	if err != nil {
		return err
	}
	return artifact.WriteFileAtomic(path, data)
}
