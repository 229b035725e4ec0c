package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/qaforge/internal/catalog"
	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/steps"
)

// selection holds the scenario selection flags shared by variants and run.
type selection struct {
	scenario  string
	scenarios string
	all       bool
}

// addSelectionFlags registers --scenario, --scenarios and --all.
func addSelectionFlags(cmd *cobra.Command, sel *selection) {
	cmd.Flags().StringVar(&sel.scenario, "scenario", "", "process one scenario (e.g. TS-001)")
	cmd.Flags().StringVar(&sel.scenarios, "scenarios", "", "process a comma separated list of scenarios (e.g. TS-001,TS-010)")
	cmd.Flags().BoolVar(&sel.all, "all", false, "process every scenario in the catalog")
}

// isSet reports whether any selection flag was given.
func (s *selection) isSet() bool {
	return s.scenario != "" || s.scenarios != "" || s.all
}

// resolve returns the requested IDs in request order. --all expands to the
// catalog's IDs in ascending order.
func (s *selection) resolve(cat *catalog.Catalog) ([]string, error) {
	switch {
	case s.all:
		return cat.IDs(), nil
	case s.scenarios != "":
		ids := catalog.ParseIDs(s.scenarios)
		if len(ids) == 0 {
			return nil, errors.Wrap(errors.ErrNoScenarios, "--scenarios")
		}
		return ids, nil
	case s.scenario != "":
		return catalog.ParseIDs(s.scenario), nil
	default:
		return nil, errors.Wrap(errors.ErrSelectionRequired, "use --scenario, --scenarios or --all")
	}
}

// environment is what every pipeline command needs before doing work.
type environment struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

// loadEnvironment loads configuration (honoring --config and the given flag
// overrides) and the scenario catalog.
func loadEnvironment(ctx context.Context, flags *GlobalFlags, overrides *config.Config) (*environment, error) {
	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	cfg, err := config.LoadWithOverrides(ctx, flags.ConfigFile, overrides)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("output_dir", cfg.OutputDir).
		Str("catalog_file", cfg.CatalogFile).
		Int("scenarios", cat.Len()).
		Msg("environment loaded")

	return &environment{cfg: cfg, catalog: cat, logger: logger}, nil
}

// loadCatalog reads the configured catalog file, or the built-in catalog.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.CatalogFile)
}

// newRegistry wires the step executors to child-process collaborators.
func (e *environment) newRegistry() *steps.Registry {
	runner := steps.NewExecRunner(e.cfg.Pipeline.StepTimeout, "")
	return steps.NewDefaultRegistry(runner, commandsFromConfig(e.cfg), e.cfg.ToolsDir)
}

// commandsFromConfig maps the configured argv templates onto step names.
func commandsFromConfig(cfg *config.Config) steps.Commands {
	return steps.Commands{
		domain.StepTestData:      cfg.Collaborators.TestData,
		domain.StepScripts:       cfg.Collaborators.Scripts,
		domain.StepCombinatorial: cfg.Collaborators.Combinatorial,
	}
}
