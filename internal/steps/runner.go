package steps

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/ctxutil"
	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/logging"
)

// ExitOutcome is what a collaborator invocation reports back.
type ExitOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Err converts a non-zero exit into ErrCollaboratorFailed carrying the
// collaborator's stderr, or stdout when stderr is empty.
func (o ExitOutcome) Err() error {
	if o.ExitCode == 0 {
		return nil
	}
	msg := logging.Excerpt(o.Stderr, constants.MaxOutputExcerpt)
	if msg == "" {
		msg = logging.Excerpt(o.Stdout, constants.MaxOutputExcerpt)
	}
	if msg == "" {
		return qaerrors.Wrapf(qaerrors.ErrCollaboratorFailed, "exit code %d", o.ExitCode)
	}
	return qaerrors.Wrapf(qaerrors.ErrCollaboratorFailed, "exit code %d: %s", o.ExitCode, msg)
}

// Runner invokes an external collaborator for a step.
//
// RunStep returns an error only when the collaborator could not be run to
// completion: it failed to start, or it exceeded the time bound
// (ErrStepTimeout). A collaborator that ran and exited non-zero is reported
// through ExitOutcome.ExitCode.
type Runner interface {
	RunStep(ctx context.Context, name domain.StepName, args []string) (ExitOutcome, error)
}

// ExecRunner runs collaborators as child processes.
type ExecRunner struct {
	timeout time.Duration
	workDir string
}

// NewExecRunner creates an ExecRunner. A non-positive timeout falls back
// to constants.DefaultStepTimeout.
func NewExecRunner(timeout time.Duration, workDir string) *ExecRunner {
	if timeout <= 0 {
		timeout = constants.DefaultStepTimeout
	}
	return &ExecRunner{timeout: timeout, workDir: workDir}
}

// Timeout returns the per-invocation time bound.
func (r *ExecRunner) Timeout() time.Duration {
	return r.timeout
}

// RunStep executes args[0] with the remaining arguments. The process runs on
// a context detached from ctx's cancellation so that an interrupt lets the
// step finish or time out rather than killing it mid-write.
func (r *ExecRunner) RunStep(ctx context.Context, name domain.StepName, args []string) (ExitOutcome, error) {
	if len(args) == 0 {
		return ExitOutcome{}, qaerrors.Wrapf(qaerrors.ErrCollaboratorNotConfigured, "step %s", name)
	}

	cmdCtx, cancel := ctxutil.Detached(ctx, r.timeout)
	defer cancel()

	//nolint:gosec // collaborator commands come from trusted project config
	cmd := exec.CommandContext(cmdCtx, args[0], args[1:]...)
	cmd.Dir = r.workDir
	cmd.WaitDelay = constants.ProcessTerminationTimeout

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	zerolog.Ctx(ctx).Debug().
		Str("step", name.String()).
		Strs("args", args).
		Msg("running collaborator")

	start := time.Now()
	err := cmd.Run()
	outcome := ExitOutcome{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		Duration: time.Since(start),
	}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		outcome.ExitCode = -1
		return outcome, qaerrors.Wrapf(qaerrors.ErrStepTimeout, "step %s exceeded %s", name, r.timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		outcome.ExitCode = -1
		return outcome, qaerrors.Wrapf(qaerrors.ErrCollaboratorFailed, "start %s: %v", args[0], err)
	}

	return outcome, nil
}

var _ Runner = (*ExecRunner)(nil)
