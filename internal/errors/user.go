package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Order matters: more specific sentinels come before the ones they wrap,
// because lookup walks the slice with errors.Is().
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrUnknownScenario,
		info: ErrorInfo{
			Message: "The requested scenario is not defined in the catalog.",
			Action:  "Run 'qaforge catalog list' to see the available scenario IDs.",
		},
	},
	{
		err: ErrEmptyAxis,
		info: ErrorInfo{
			Message: "A parameter axis has no allowed values.",
			Action:  "Give every axis in the catalog at least one value.",
		},
	},
	{
		err: ErrDuplicateAxisValue,
		info: ErrorInfo{
			Message: "A parameter axis lists the same value twice.",
			Action:  "Remove the repeated value from the axis in the catalog.",
		},
	},
	{
		err: ErrConfiguration,
		info: ErrorInfo{
			Message: "The scenario catalog is invalid.",
			Action:  "Fix the catalog file reported above and retry.",
		},
	},
	{
		err: ErrMissingDependency,
		info: ErrorInfo{
			Message: "A required artifact from an earlier step is missing.",
			Action:  "Run the earlier steps first, e.g. 'qaforge run --steps variants'.",
		},
	},
	{
		err: ErrStepTimeout,
		info: ErrorInfo{
			Message: "A pipeline step exceeded its time limit.",
			Action:  "Increase pipeline.step_timeout or check the collaborator tool.",
		},
	},
	{
		err: ErrCollaboratorNotConfigured,
		info: ErrorInfo{
			Message: "No command is configured for this pipeline step.",
			Action:  "Set the matching collaborators.* key in .qaforge/config.yaml.",
		},
	},
	{
		err: ErrCollaboratorFailed,
		info: ErrorInfo{
			Message: "A collaborator tool exited with an error.",
			Action:  "Re-run with --verbose to see the tool output.",
		},
	},
	{
		err: ErrUnknownStep,
		info: ErrorInfo{
			Message: "An unknown pipeline step was requested.",
			Action:  "Valid steps are: variants, test-data, scripts, combinatorial.",
		},
	},
	{
		err: ErrUnknownReport,
		info: ErrorInfo{
			Message: "An unknown summary report was requested.",
			Action:  "Valid reports are: metrics, index, all.",
		},
	},
	{
		err: ErrRootLocked,
		info: ErrorInfo{
			Message: "Another qaforge run is writing to this scenarios directory.",
			Action:  "Wait for the other run to finish and retry.",
		},
	},
	{
		err: ErrScenariosRootNotFound,
		info: ErrorInfo{
			Message: "The scenarios directory does not exist.",
			Action:  "Generate variants first or pass the correct --output-dir.",
		},
	},
	{
		err: ErrInterrupted,
		info: ErrorInfo{
			Message: "The run was interrupted. Artifacts of the interrupted step may be incomplete.",
			Action:  "Re-run the same command; every step overwrites its artifacts.",
		},
	},
	{
		err: ErrBatchFailed,
		info: ErrorInfo{
			Message: "One or more scenarios failed.",
			Action:  "See the per-scenario summary above for the failing step and cause.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
	{
		err: ErrConflictingFlags,
		info: ErrorInfo{
			Message: "Conflicting flags were specified.",
			Action:  "Check the command help for valid flag combinations.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
