package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/orchestrator"
	"github.com/mrz1836/qaforge/internal/signal"
	"github.com/mrz1836/qaforge/internal/steps"
	"github.com/mrz1836/qaforge/internal/tui"
)

// runOptions holds the run command flags.
type runOptions struct {
	selection
	steps         string
	allSteps      bool
	parallel      int
	outputDir     string
	scenariosFile string
	stepTimeout   time.Duration
	noReport      bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newRunCmd(flags, nil))
}

// newRunCmd builds the run command. A non-nil registry replaces the
// child-process collaborators (tests inject scripted runners this way).
func newRunCmd(flags *GlobalFlags, registry *steps.Registry) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run pipeline steps for a batch of scenarios",
		Long: `Run the selected pipeline steps for every selected scenario.

Steps always execute in pipeline order, whatever order they are given in:
  variants → test-data → scripts → combinatorial

A step that fails stops its scenario; the remaining requested steps are
recorded as skipped. Other scenarios are not affected. The command exits 0
when no scenario failed outright (partial scenarios count as success), 1
otherwise, and 130 when interrupted.

Examples:
  qaforge run --scenario TS-001 --all-steps
  qaforge run --all --steps variants,test-data
  qaforge run --scenarios TS-001,TS-002 --all-steps --scenarios-file deliverables/03_test_scenarios.md
  qaforge run --all --all-steps --parallel 4 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), flags, opts, registry)
		},
	}

	addSelectionFlags(cmd, &opts.selection)
	cmd.MarkFlagsMutuallyExclusive("scenario", "scenarios", "all")
	cmd.Flags().StringVar(&opts.steps, "steps", "", "comma separated steps: variants,test-data,scripts,combinatorial")
	cmd.Flags().BoolVar(&opts.allSteps, "all-steps", false, "run every pipeline step")
	cmd.MarkFlagsMutuallyExclusive("steps", "all-steps")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "scenarios processed at once (default from config: 1)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "scenarios root (default from config: deliverables/scenarios)")
	cmd.Flags().StringVar(&opts.scenariosFile, "scenarios-file", "", "scenario descriptions passed to the scripts step")
	cmd.Flags().DurationVar(&opts.stepTimeout, "step-timeout", 0, "time bound for one collaborator invocation (default from config: 10m)")
	cmd.Flags().BoolVar(&opts.noReport, "no-report", false, "do not write orchestration_report.json")

	return cmd
}

// requestedSteps resolves --steps / --all-steps.
func (o *runOptions) requestedSteps() ([]domain.StepName, error) {
	switch {
	case o.allSteps:
		return orchestrator.AllSteps(), nil
	case o.steps != "":
		return orchestrator.ParseSteps(o.steps)
	default:
		return nil, errors.Wrap(errors.ErrSelectionRequired, "use --steps or --all-steps")
	}
}

func runPipeline(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *runOptions, registry *steps.Registry) error {
	if !opts.isSet() {
		return errors.Wrap(errors.ErrSelectionRequired, "use --scenario, --scenarios or --all")
	}
	names, err := opts.requestedSteps()
	if err != nil {
		return err
	}
	if opts.parallel < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline, "--parallel must be at least 1, got %d", opts.parallel)
	}

	env, err := loadEnvironment(ctx, flags, &config.Config{
		OutputDir:     opts.outputDir,
		ScenariosFile: opts.scenariosFile,
		Pipeline:      config.PipelineConfig{StepTimeout: opts.stepTimeout, Parallel: opts.parallel},
	})
	if err != nil {
		return err
	}

	ids, err := opts.resolve(env.catalog)
	if err != nil {
		return err
	}

	if registry == nil {
		registry = env.newRegistry()
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()

	out := newOutput(w, flags)
	textOutput := flags.Output != OutputJSON && !flags.Quiet

	orch := orchestrator.New(env.catalog, registry, orchestrator.Config{
		Root:          env.cfg.OutputDir,
		ScenariosFile: env.cfg.ScenariosFile,
		Parallel:      env.cfg.Pipeline.Parallel,
		WriteReport:   !opts.noReport,
	}, env.logger, orchestrator.WithProgress(func(result *domain.ScenarioResult, completed, total int) {
		if textOutput {
			_, _ = fmt.Fprintln(w, progressLine(result, completed, total))
		}
	}))

	if textOutput {
		out.Info(fmt.Sprintf("Processing %s: %s", formatCount("scenarios", len(ids)), strings.Join(stepNames(names), " → ")))
	}

	report, runErr := orch.Run(handler.Context(), ids, names)
	if report == nil {
		return runErr
	}

	if flags.Output == OutputJSON {
		if err := out.JSON(report); err != nil {
			return err
		}
	} else {
		printRunSummary(w, out, report, env.cfg.OutputDir)
	}

	switch {
	case runErr != nil && !stderrors.Is(runErr, errors.ErrInterrupted):
		return runErr
	case report.ExitCode() == ExitInterrupted:
		return errors.NewExitCodeError(ExitInterrupted, errors.ErrInterrupted)
	case report.ExitCode() != ExitSuccess:
		return errors.NewExitCodeError(report.ExitCode(), errors.ErrBatchFailed)
	}
	return nil
}

// progressLine renders "[ 2/10] TS-002 ✓ success (12.4s)".
func progressLine(result *domain.ScenarioResult, completed, total int) string {
	width := len(fmt.Sprint(total))
	return fmt.Sprintf("[%*d/%d] %s %s (%s)",
		width, completed, total,
		result.ScenarioID,
		tui.FormatScenarioStatus(result.Status),
		tui.FormatDuration(result.Duration))
}

func printRunSummary(w io.Writer, out tui.Output, report *orchestrator.Report, root string) {
	_, _ = fmt.Fprintln(w)
	out.Info(tui.StyleBold.Render("Orchestration summary"))

	rows := make([][]string, 0, len(report.Scenarios))
	for _, r := range report.Scenarios {
		rows = append(rows, []string{
			r.ScenarioID,
			tui.FormatScenarioStatus(r.Status),
			stepCells(r),
			tui.FormatDuration(r.Duration),
		})
	}
	out.Table([]string{"Scenario", "Status", "Steps", "Duration"}, rows)

	counts := report.StatusCounts
	out.Info(fmt.Sprintf("Total scenarios: %d", len(report.Scenarios)))
	out.Success(fmt.Sprintf("Successful: %d", counts[constants.ScenarioStatusSuccess]))
	if n := counts[constants.ScenarioStatusPartial]; n > 0 {
		out.Warning(fmt.Sprintf("Partial: %d", n))
	}
	if n := counts[constants.ScenarioStatusFailed]; n > 0 {
		out.Warning(fmt.Sprintf("Failed: %d", n))
	}

	if len(report.Steps) > 0 {
		statRows := make([][]string, 0, len(report.Steps))
		for _, name := range report.Steps {
			stats, ok := report.StepStats[name]
			if !ok {
				continue
			}
			executed := stats.Success + stats.Failed
			statRows = append(statRows, []string{
				name.String(),
				fmt.Sprintf("%d/%d", stats.Success, executed),
				fmt.Sprint(stats.Skipped),
				tui.FormatDuration(stats.AverageDuration),
			})
		}
		out.Table([]string{"Step", "Successful", "Skipped", "Avg Duration"}, statRows)
	}

	printTotals(out, report.Totals)

	for _, r := range report.Failed() {
		out.Warning(r.ScenarioID + ": " + r.Error)
	}
	if len(report.NotStarted) > 0 {
		out.Warning("Not started: " + strings.Join(report.NotStarted, ", "))
	}

	out.Info("Output directory: " + root)
	if report.Path != "" {
		out.Info("Report: " + report.Path)
	}
}

func printTotals(out tui.Output, t orchestrator.Totals) {
	if t.Variants > 0 {
		out.Info("Variants: " + formatNumber(t.Variants))
	}
	if t.TestDataRows > 0 {
		out.Info("Test data rows: " + formatNumber(t.TestDataRows))
	}
	if t.Scripts > 0 {
		out.Info("Test scripts: " + formatNumber(t.Scripts))
	}
	if t.OptimizedCases > 0 {
		out.Info(fmt.Sprintf("Optimized cases: %s (mean coverage %.1f%%)", formatNumber(t.OptimizedCases), t.MeanCoverage))
	}
}

// stepCells renders each recorded step as an icon and its name.
func stepCells(r *domain.ScenarioResult) string {
	cells := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		cells = append(cells, tui.FormatStepStatus(s.Status, s.Step.String()))
	}
	return strings.Join(cells, " ")
}

func stepNames(names []domain.StepName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}
