package domain

import "github.com/mrz1836/qaforge/internal/constants"

// Re-export status types from constants so consumers can import domain
// types and status values together.
type (
	// StepStatus is the outcome of one step.
	StepStatus = constants.StepStatus

	// ScenarioStatus is the outcome of one scenario.
	ScenarioStatus = constants.ScenarioStatus
)

// Re-export status constants for convenience.
const (
	StepStatusSuccess = constants.StepStatusSuccess
	StepStatusFailed  = constants.StepStatusFailed
	StepStatusSkipped = constants.StepStatusSkipped

	ScenarioStatusSuccess = constants.ScenarioStatusSuccess
	ScenarioStatusPartial = constants.ScenarioStatusPartial
	ScenarioStatusFailed  = constants.ScenarioStatusFailed
)
