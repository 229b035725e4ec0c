// Package errors provides centralized error handling for qaforge.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrConfiguration indicates a scenario or catalog definition is structurally
	// invalid. It is fatal to the affected scenario only.
	ErrConfiguration = errors.New("invalid scenario configuration")

	// ErrUnknownScenario indicates a requested scenario ID is not in the catalog.
	ErrUnknownScenario = fmt.Errorf("%w: unknown scenario", ErrConfiguration)

	// ErrEmptyAxis indicates a parameter axis declares no allowed values.
	ErrEmptyAxis = fmt.Errorf("%w: axis has no values", ErrConfiguration)

	// ErrDuplicateAxis indicates the same axis name was declared twice in one parameter set.
	ErrDuplicateAxis = fmt.Errorf("%w: duplicate axis", ErrConfiguration)

	// ErrDuplicateAxisValue indicates an axis lists the same value more than once.
	ErrDuplicateAxisValue = fmt.Errorf("%w: duplicate axis value", ErrConfiguration)

	// ErrMissingDependency indicates a step's precondition artifact is absent.
	// Fatal to that step and all later steps of the same scenario.
	ErrMissingDependency = errors.New("missing step dependency")

	// ErrStepTimeout indicates a collaborator invocation exceeded its time bound.
	ErrStepTimeout = errors.New("step timed out")

	// ErrCollaboratorFailed indicates a collaborator process exited non-zero
	// or could not be started.
	ErrCollaboratorFailed = errors.New("collaborator failed")

	// ErrCollaboratorNotConfigured indicates no command is configured for a step.
	ErrCollaboratorNotConfigured = errors.New("collaborator command not configured")

	// ErrConsistency marks a non-fatal mismatch between the actual and the
	// expected variant count. It is logged, never returned to callers.
	ErrConsistency = errors.New("variant count mismatch")

	// ErrDiscovery marks a non-fatal aggregator entry that does not match the
	// expected naming or shape. It is logged and the entry is skipped.
	ErrDiscovery = errors.New("unrecognized scenario entry")

	// ErrUnknownStep indicates an unrecognized pipeline step name was requested.
	ErrUnknownStep = errors.New("unknown step")

	// ErrNoSteps indicates a run was requested without any steps.
	ErrNoSteps = errors.New("no steps requested")

	// ErrNoScenarios indicates a run was requested without any scenarios.
	ErrNoScenarios = errors.New("no scenarios requested")

	// ErrUnknownReport indicates an unrecognized summary report name was requested.
	ErrUnknownReport = errors.New("unknown report")

	// ErrInterrupted indicates the batch was stopped by an external interrupt.
	ErrInterrupted = errors.New("interrupted by user")

	// ErrRootLocked indicates another batch currently holds the scenarios root.
	ErrRootLocked = errors.New("scenarios root is locked by another run")

	// ErrScenariosRootNotFound indicates the scenarios root directory does not exist.
	ErrScenariosRootNotFound = errors.New("scenarios directory not found")

	// ErrNoVariants indicates an attempt to write an empty variant set.
	ErrNoVariants = errors.New("no variants to write")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidPipeline indicates an invalid pipeline configuration value.
	ErrConfigInvalidPipeline = errors.New("invalid pipeline configuration")

	// ErrConfigInvalidOutput indicates an invalid output directory configuration.
	ErrConfigInvalidOutput = errors.New("invalid output configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrConflictingFlags indicates that mutually exclusive flags were specified.
	ErrConflictingFlags = errors.New("conflicting flags specified")

	// ErrSelectionRequired indicates no scenario selection flag was given.
	ErrSelectionRequired = errors.New("scenario selection required")

	// ErrBatchFailed indicates at least one scenario in a batch ended in failed status.
	ErrBatchFailed = errors.New("one or more scenarios failed")
)

// ExitCodeError wraps an error together with the process exit code it maps to.
type ExitCodeError struct {
	Code int
	Err  error
}

// NewExitCodeError wraps err so the CLI exits with code.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCodeOf returns the exit code carried by err, if any.
func ExitCodeOf(err error) (int, bool) {
	var e *ExitCodeError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
