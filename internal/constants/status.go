package constants

// StepStatus is the outcome of one pipeline step for one scenario.
// Status values use snake_case for JSON serialization compatibility.
type StepStatus string

// Step status constants.
const (
	// StepStatusSuccess indicates the step produced its artifact.
	StepStatusSuccess StepStatus = "success"

	// StepStatusFailed indicates the step failed. Later requested steps of
	// the same scenario are skipped.
	StepStatusFailed StepStatus = "failed"

	// StepStatusSkipped indicates the step was requested but never executed
	// because an earlier step failed or the batch was interrupted.
	StepStatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the StepStatus.
func (s StepStatus) String() string {
	return string(s)
}

// ScenarioStatus represents the overall result of processing a scenario.
type ScenarioStatus string

// Scenario status constants.
//
//	success  every requested step succeeded
//	partial  at least one step succeeded before a failure halted the chain
//	failed   the first executed step failed, or the scenario was not runnable
const (
	ScenarioStatusSuccess ScenarioStatus = "success"
	ScenarioStatusPartial ScenarioStatus = "partial"
	ScenarioStatusFailed  ScenarioStatus = "failed"
)

// String returns the string representation of the ScenarioStatus.
func (s ScenarioStatus) String() string {
	return string(s)
}

// MetricsStatus is the status persisted in a scenario's metrics record.
type MetricsStatus string

// Metrics status constants.
const (
	MetricsStatusSuccess MetricsStatus = "success"
	MetricsStatusFailed  MetricsStatus = "failed"
)

// String returns the string representation of the MetricsStatus.
func (s MetricsStatus) String() string {
	return string(s)
}
