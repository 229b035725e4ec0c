package cli

import (
	stderrors "errors"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates no scenario failed.
	ExitSuccess = constants.ExitSuccess
	// ExitError indicates a general error or at least one failed scenario.
	ExitError = constants.ExitFailure
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = constants.ExitInvalidInput
	// ExitInterrupted indicates the run was stopped by a signal.
	ExitInterrupted = constants.ExitInterrupted
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = tui.FormatText
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = tui.FormatJSON
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// ConfigFile replaces the discovered project and global config files.
	ConfigFile string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "config file (default: .qaforge/config.yaml, then ~/.qaforge/config.yaml)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for environment variable
// support. The QAFORGE_ prefix is used (e.g., QAFORGE_OUTPUT, QAFORGE_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Root().PersistentFlags() finds the root flags even from a subcommand.
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet", "config"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// newOutput creates the output for the selected format.
func newOutput(w io.Writer, flags *GlobalFlags) tui.Output {
	return tui.NewOutput(w, flags.Output)
}

// ExitCodeForError returns the appropriate exit code for the given error.
//
//	nil                         → 0
//	ExitCodeError               → its code
//	interrupted                 → 130
//	invalid flags, steps, IDs   → 2
//	anything else               → 1
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if code, ok := errors.ExitCodeOf(err); ok {
		return code
	}

	if stderrors.Is(err, errors.ErrInterrupted) {
		return ExitInterrupted
	}

	for _, invalid := range invalidInputErrors() {
		if stderrors.Is(err, invalid) {
			return ExitInvalidInput
		}
	}

	// Cobra flag parsing errors (mutually exclusive flags, unknown flags, etc.)
	if isInvalidInputError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// invalidInputErrors are rejected before any scenario runs.
func invalidInputErrors() []error {
	return []error{
		errors.ErrInvalidOutputFormat,
		errors.ErrConflictingFlags,
		errors.ErrSelectionRequired,
		errors.ErrUnknownStep,
		errors.ErrNoSteps,
		errors.ErrNoScenarios,
		errors.ErrUnknownReport,
		errors.ErrConfiguration,
		errors.ErrConfigInvalidOutput,
		errors.ErrConfigInvalidPipeline,
	}
}

// isInvalidInputError checks if an error message indicates invalid user input.
// This catches Cobra's built-in flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
