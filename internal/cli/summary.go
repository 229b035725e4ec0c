package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/qaforge/internal/aggregator"
	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/signal"
	"github.com/mrz1836/qaforge/internal/tui"
)

// summaryOptions holds the summary command flags.
type summaryOptions struct {
	outputDir string
	reports   []string
	combine   bool
	show      bool
	watch     bool
	debounce  time.Duration
}

// AddSummaryCommand adds the summary command to the root command.
func AddSummaryCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newSummaryCmd(flags))
}

func newSummaryCmd(flags *GlobalFlags) *cobra.Command {
	opts := &summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Rebuild batch reports from the scenario directories",
		Long: `Scan the scenarios directory and write batch-wide reports into the
summary directory next to it:

  metrics   metrics_dashboard.md, a human-readable dashboard
  index     scenario_index.json, a machine-readable scenario index
  all       both (default)

The scan reads only what is on disk, so it can run at any time, including
after a partial or interrupted batch.

Examples:
  qaforge summary
  qaforge summary --reports metrics --show
  qaforge summary --output-dir deliverables/scenarios --combine-variants
  qaforge summary --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "scenarios root (default from config: deliverables/scenarios)")
	cmd.Flags().StringSliceVar(&opts.reports, "reports", nil, "reports to write: metrics, index, all (default from config: all)")
	cmd.Flags().BoolVar(&opts.combine, "combine-variants", false, "also write all_variants.csv renumbered across scenarios")
	cmd.Flags().BoolVar(&opts.show, "show", false, "render the dashboard in the terminal")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "rebuild the reports whenever the scenarios directory changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", constants.WatchDebounce, "quiet period before a watch rebuild")

	return cmd
}

// summaryResponse is the JSON output of the summary command.
type summaryResponse struct {
	Success          bool     `json:"success"`
	SummaryDir       string   `json:"summary_dir"`
	Scenarios        int      `json:"scenarios"`
	TotalVariants    int      `json:"total_variants"`
	CombinedVariants int      `json:"combined_variants,omitempty"`
	Files            []string `json:"files"`
}

func runSummary(cmd *cobra.Command, w io.Writer, flags *GlobalFlags, opts *summaryOptions) error {
	ctx := cmd.Context()
	env, err := loadEnvironment(ctx, flags, &config.Config{
		OutputDir: opts.outputDir,
		Summary:   config.SummaryConfig{Reports: opts.reports},
	})
	if err != nil {
		return err
	}

	reports, err := aggregator.ParseReports(env.cfg.Summary.Reports)
	if err != nil {
		return err
	}
	combine := env.cfg.Summary.CombineVariants
	if cmd.Flags().Changed("combine-variants") {
		combine = opts.combine
	}

	agg := aggregator.New(env.cfg.OutputDir, env.logger)
	out := newOutput(w, flags)

	build := func(ctx context.Context) error {
		result, err := agg.Run(ctx, reports, combine)
		if err != nil {
			return err
		}
		return printSummary(w, out, flags, opts, result)
	}

	if !opts.watch {
		return build(ctx)
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	if flags.Output != OutputJSON {
		out.Info("Watching " + env.cfg.OutputDir + " (Ctrl+C to stop)")
	}
	return agg.Watch(env.logger.WithContext(handler.Context()), opts.debounce, build)
}

func printSummary(w io.Writer, out tui.Output, flags *GlobalFlags, opts *summaryOptions, result *aggregator.Result) error {
	if flags.Output == OutputJSON {
		return out.JSON(summaryResponse{
			Success:          true,
			SummaryDir:       result.SummaryDir,
			Scenarios:        result.Scenarios,
			TotalVariants:    result.TotalVariants,
			CombinedVariants: result.CombinedVariants,
			Files:            append([]string{}, result.Files...),
		})
	}

	if opts.show && result.Collection != nil {
		_, _ = fmt.Fprint(w, tui.RenderMarkdown(string(result.Collection.Dashboard())))
	}

	out.Success(fmt.Sprintf("Aggregated %s (%s)",
		formatCount("scenarios", result.Scenarios),
		formatCount("variants", result.TotalVariants)))
	if result.CombinedVariants > 0 {
		out.Info("Combined variants: " + formatNumber(result.CombinedVariants))
	}
	for _, f := range result.Files {
		out.Info("  " + f)
	}
	if result.Scenarios == 0 {
		out.Warning("No scenario directories found")
	}
	return nil
}
