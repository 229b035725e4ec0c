package cli

import (
	"context"
	stderrors "errors"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/ctxutil"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/signal"
	"github.com/mrz1836/qaforge/internal/tui"
	"github.com/mrz1836/qaforge/internal/variant"
)

// variantsOptions holds the variants command flags.
type variantsOptions struct {
	selection
	monolithic bool
	outputDir  string
	file       string
}

// AddVariantsCommand adds the variants command to the root command.
func AddVariantsCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newVariantsCmd(flags))
}

func newVariantsCmd(flags *GlobalFlags) *cobra.Command {
	opts := &variantsOptions{}
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Expand scenarios into their variant tables",
		Long: `Expand each selected scenario's parameter space into variants.

Every scenario gets its own directory under the output directory holding
variants.csv and metrics.json. Variant IDs restart at V00001 in every
scenario. A failing scenario does not stop the others.

--monolithic writes every scenario into a single table numbered across
the whole catalog instead.

Examples:
  qaforge variants --scenario TS-001
  qaforge variants --scenarios TS-001,TS-002,TS-010
  qaforge variants --all --output-dir deliverables/scenarios
  qaforge variants --monolithic --file deliverables/04_variants.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVariants(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	addSelectionFlags(cmd, &opts.selection)
	cmd.Flags().BoolVar(&opts.monolithic, "monolithic", false, "write every scenario into one table numbered across the catalog")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "scenarios root (default from config: deliverables/scenarios)")
	cmd.Flags().StringVar(&opts.file, "file", "", "monolithic output file (default: <summary>/all_scenarios_variants.csv)")
	cmd.MarkFlagsMutuallyExclusive("scenario", "scenarios", "all", "monolithic")

	return cmd
}

// variantsRow is one scenario's outcome in the variants command output.
type variantsRow struct {
	ScenarioID string `json:"scenario_id"`
	Status     string `json:"status"`
	Variants   int    `json:"variants"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// variantsResponse is the JSON output of the variants command.
type variantsResponse struct {
	Success       bool          `json:"success"`
	TotalVariants int           `json:"total_variants"`
	Scenarios     []variantsRow `json:"scenarios"`
}

func runVariants(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *variantsOptions) error {
	if !opts.monolithic && !opts.isSet() {
		return errors.Wrap(errors.ErrSelectionRequired, "use --scenario, --scenarios, --all or --monolithic")
	}

	env, err := loadEnvironment(ctx, flags, &config.Config{OutputDir: opts.outputDir})
	if err != nil {
		return err
	}
	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = env.logger.WithContext(handler.Context())
	out := newOutput(w, flags)
	gen := variant.NewGenerator(env.cfg.OutputDir, env.catalog.Global())

	if opts.monolithic {
		return runMonolithic(ctx, out, flags, env, gen, opts.file)
	}

	ids, err := opts.resolve(env.catalog)
	if err != nil {
		return err
	}

	resp := variantsResponse{Success: true, Scenarios: make([]variantsRow, 0, len(ids))}
	for _, id := range ids {
		if err := ctxutil.Canceled(ctx); err != nil {
			return errors.Wrap(errors.ErrInterrupted, "variants")
		}
		row := generateOne(ctx, env, gen, id)
		if row.Status != constants.MetricsStatusSuccess.String() {
			resp.Success = false
		}
		resp.TotalVariants += row.Variants
		resp.Scenarios = append(resp.Scenarios, row)
	}

	if flags.Output == OutputJSON {
		if err := out.JSON(resp); err != nil {
			return err
		}
	} else {
		printVariants(out, env.cfg.OutputDir, resp)
	}

	if !resp.Success {
		return errors.NewExitCodeError(ExitError, errors.ErrBatchFailed)
	}
	return nil
}

// generateOne expands one scenario. Failures are captured in the row.
func generateOne(ctx context.Context, env *environment, gen *variant.Generator, id string) variantsRow {
	row := variantsRow{ScenarioID: id, Status: constants.MetricsStatusFailed.String()}

	def, err := env.catalog.Lookup(id)
	if err != nil {
		row.Error = err.Error()
		env.logger.Error().Err(err).Str("scenario_id", id).Msg("scenario not in catalog")
		return row
	}

	metrics, err := gen.GenerateScenario(ctx, def)
	if metrics != nil {
		row.Status = metrics.Status.String()
		row.Variants = metrics.VariantCount
		row.OutputFile = metrics.OutputFile
	}
	if err != nil {
		row.Status = constants.MetricsStatusFailed.String()
		row.Error = err.Error()
	}
	return row
}

func printVariants(out tui.Output, root string, resp variantsResponse) {
	if len(resp.Scenarios) == 1 {
		row := resp.Scenarios[0]
		if row.Error != "" {
			out.Warning(row.ScenarioID + ": " + row.Error)
			return
		}
		out.Success("Generated " + formatCount("variants", row.Variants) + " for " + row.ScenarioID)
		out.Info("  Output: " + row.OutputFile)
		return
	}

	rows := make([][]string, 0, len(resp.Scenarios))
	succeeded := 0
	for _, r := range resp.Scenarios {
		status := tui.FormatStepStatus(constants.StepStatusSuccess, r.Status)
		if r.Error != "" {
			status = tui.FormatStepStatus(constants.StepStatusFailed, r.Status)
		} else {
			succeeded++
		}
		rows = append(rows, []string{r.ScenarioID, status, strconv.Itoa(r.Variants)})
	}
	out.Table([]string{"Scenario", "Status", "Variants"}, rows)

	for _, r := range resp.Scenarios {
		if r.Error != "" {
			out.Warning(r.ScenarioID + ": " + r.Error)
		}
	}

	msg := "Generated " + formatCount("variants", resp.TotalVariants) + " across " + formatCount("scenarios", succeeded)
	if resp.Success {
		out.Success(msg)
	} else {
		out.Warning(msg)
	}
	out.Info("  Output directory: " + root)
}

// monolithicResponse is the JSON output of variants --monolithic.
type monolithicResponse struct {
	Success bool `json:"success"`
	*variant.MonolithicResult
}

func runMonolithic(ctx context.Context, out tui.Output, flags *GlobalFlags, env *environment, gen *variant.Generator, file string) error {
	if file == "" {
		file = filepath.Join(artifact.SummaryDir(env.cfg.OutputDir), constants.MonolithicFileName)
	}
	if err := artifact.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}

	defs := env.catalog.Definitions()
	result, err := gen.GenerateMonolithic(ctx, defs, file)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return errors.Wrap(errors.ErrInterrupted, "variants")
		}
		return err
	}

	ok := len(result.Skipped) == 0
	if flags.Output == OutputJSON {
		if err := out.JSON(monolithicResponse{Success: ok, MonolithicResult: result}); err != nil {
			return err
		}
	} else {
		for _, id := range slices.Sorted(maps.Keys(result.Skipped)) {
			out.Warning(id + " skipped: " + result.Skipped[id])
		}
		out.Success("Generated " + formatCount("variants", result.TotalVariants) + " across " + formatCount("scenarios", len(result.PerScenario)))
		out.Info("  Output: " + result.Path)
	}

	if !ok {
		return errors.NewExitCodeError(ExitError, errors.ErrBatchFailed)
	}
	return nil
}
