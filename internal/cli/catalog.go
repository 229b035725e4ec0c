package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/variant"
)

// AddCatalogCommand adds the catalog command group to the root command.
func AddCatalogCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the scenario catalog",
	}
	cmd.AddCommand(newCatalogListCmd(flags), newCatalogShowCmd(flags))
	root.AddCommand(cmd)
}

func newCatalogListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios with their expected variant counts",
		Long: `List every scenario of the catalog with the number of variants its
parameter space expands to (scenario axes plus the global axes).

Examples:
  qaforge catalog list
  qaforge catalog list --output json
  qaforge catalog list --config custom.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalogList(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

// catalogEntry is one row of catalog list output.
type catalogEntry struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Axes             []string `json:"axes"`
	ExpectedVariants int      `json:"expected_variants"`
}

func runCatalogList(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	env, err := loadEnvironment(ctx, flags, nil)
	if err != nil {
		return err
	}
	out := newOutput(w, flags)
	global := env.catalog.Global()

	entries := make([]catalogEntry, 0, env.catalog.Len())
	total := 0
	for _, def := range env.catalog.Definitions() {
		expected := variant.ExpectedCount(def.Parameters, global)
		total += expected
		entries = append(entries, catalogEntry{
			ID:               def.ID,
			Title:            def.Title,
			Axes:             variant.EffectiveAxes(def.Parameters, global).Names(),
			ExpectedVariants: expected,
		})
	}

	if flags.Output == OutputJSON {
		return out.JSON(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Title, strings.Join(e.Axes, ", "), strconv.Itoa(e.ExpectedVariants)})
	}
	out.Table([]string{"ID", "Title", "Axes", "Variants"}, rows)
	out.Info(formatCount("scenarios", len(entries)) + ", " + formatCount("variants", total))
	return nil
}

func newCatalogShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scenario-id>",
		Short: "Show the effective parameter axes of one scenario",
		Long: `Show the axes a scenario expands over, in expansion order: the
scenario's own axes first, then the global axes it does not redefine.

Examples:
  qaforge catalog show TS-001
  qaforge catalog show TS-001 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(cmd.Context(), cmd.OutOrStdout(), flags, args[0])
		},
	}
}

// scenarioDetail is the catalog show output.
type scenarioDetail struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Axes             domain.Axes `json:"axes"`
	ExpectedVariants int         `json:"expected_variants"`
}

func runCatalogShow(ctx context.Context, w io.Writer, flags *GlobalFlags, id string) error {
	env, err := loadEnvironment(ctx, flags, nil)
	if err != nil {
		return err
	}
	def, err := env.catalog.Lookup(strings.ToUpper(strings.TrimSpace(id)))
	if err != nil {
		return err
	}

	global := env.catalog.Global()
	detail := scenarioDetail{
		ID:               def.ID,
		Title:            def.Title,
		Axes:             variant.EffectiveAxes(def.Parameters, global),
		ExpectedVariants: variant.ExpectedCount(def.Parameters, global),
	}

	out := newOutput(w, flags)
	if flags.Output == OutputJSON {
		return out.JSON(detail)
	}

	out.Info(detail.ID + "  " + detail.Title)
	rows := make([][]string, 0, len(detail.Axes))
	for _, axis := range detail.Axes {
		rows = append(rows, []string{axis.Name, strconv.Itoa(len(axis.Values)), strings.Join(axis.Values, ", ")})
	}
	out.Table([]string{"Axis", "Values", "Options"}, rows)
	out.Info(formatCount("variants", detail.ExpectedVariants))
	return nil
}
