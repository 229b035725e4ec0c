package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

func TestExitCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitError)
	assert.Equal(t, 2, ExitInvalidInput)
	assert.Equal(t, 130, ExitInterrupted)
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddGlobalFlags(cmd, flags)
	cmd.SetArgs([]string{"-o", "json", "-v", "-c", "custom.yaml"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, OutputJSON, flags.Output)
	assert.True(t, flags.Verbose)
	assert.False(t, flags.Quiet)
	assert.Equal(t, "custom.yaml", flags.ConfigFile)
}

func TestGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddGlobalFlags(cmd, flags)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, OutputText, flags.Output)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)
	assert.Empty(t, flags.ConfigFile)
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)
	require.NoError(t, cmd.ParseFlags([]string{"--output", "json"}))

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, "json", v.GetString("output"))
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat("text"))
	assert.True(t, IsValidOutputFormat("json"))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
	assert.Equal(t, []string{"text", "json"}, ValidOutputFormats())
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "generic", err: errors.New("disk full"), want: ExitError},
		{name: "batch failed", err: qaerrors.NewExitCodeError(1, qaerrors.ErrBatchFailed), want: ExitError},
		{name: "explicit code wins", err: qaerrors.NewExitCodeError(130, errors.New("stopped")), want: ExitInterrupted},
		{name: "interrupted", err: fmt.Errorf("run: %w", qaerrors.ErrInterrupted), want: ExitInterrupted},
		{name: "context canceled is a failure", err: context.Canceled, want: ExitError},
		{name: "unknown step", err: qaerrors.Wrapf(qaerrors.ErrUnknownStep, "%q", "deploy"), want: ExitInvalidInput},
		{name: "no steps", err: qaerrors.ErrNoSteps, want: ExitInvalidInput},
		{name: "selection required", err: qaerrors.ErrSelectionRequired, want: ExitInvalidInput},
		{name: "unknown report", err: qaerrors.ErrUnknownReport, want: ExitInvalidInput},
		{name: "unknown scenario", err: qaerrors.ErrUnknownScenario, want: ExitInvalidInput},
		{name: "invalid pipeline config", err: qaerrors.ErrConfigInvalidPipeline, want: ExitInvalidInput},
		{name: "output format", err: qaerrors.ErrInvalidOutputFormat, want: ExitInvalidInput},
		{name: "collaborator failed", err: qaerrors.ErrCollaboratorFailed, want: ExitError},
		{name: "root locked", err: qaerrors.ErrRootLocked, want: ExitError},
		{name: "cobra unknown flag", err: errors.New("unknown flag: --nope"), want: ExitInvalidInput},
		{name: "cobra exclusive group", err: errors.New("if any flags in the group [steps all-steps] are set none of the others can be"), want: ExitInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}
