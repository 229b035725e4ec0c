package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/errors"
)

// initOptions holds flags specific to the init command.
type initOptions struct {
	yes    bool
	global bool
}

// initPrompter fills cfg interactively. Tests replace it.
type initPrompter func(ctx context.Context, cfg *config.Config) error

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command, flags *GlobalFlags) {
	root.AddCommand(newInitCmd(flags, runInitWizard))
}

func newInitCmd(flags *GlobalFlags, prompt initPrompter) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a qaforge configuration file",
		Long: `Write a qaforge configuration file with a guided setup wizard.

The wizard asks for the scenarios root, the catalog and scenario description
files, the collaborator tools directory and the pipeline settings. The
collaborator command templates are written with their defaults and can be
edited afterwards.

Configuration is saved to:
  - Project: .qaforge/config.yaml (default)
  - Global:  ~/.qaforge/config.yaml (with --global)

An existing file is kept as config.yaml.backup before being overwritten.

Examples:
  qaforge init
  qaforge init --yes
  qaforge init --global --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), flags, opts, prompt)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip all prompts and write the defaults")
	cmd.Flags().BoolVar(&opts.global, "global", false, "save to the global config (~/.qaforge/config.yaml)")

	return cmd
}

// initResponse is the JSON shape of init output.
type initResponse struct {
	Success    bool   `json:"success"`
	ConfigPath string `json:"config_path"`
	BackupPath string `json:"backup_path,omitempty"`
}

func runInit(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *initOptions, prompt initPrompter) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg := config.DefaultConfig()
	if !opts.yes && flags.Output != OutputJSON {
		if err := prompt(ctx, cfg); err != nil {
			if stderrors.Is(err, huh.ErrUserAborted) {
				return errors.ErrInterrupted
			}
			return fmt.Errorf("setup wizard: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	path := config.ProjectConfigPath()
	header := "# qaforge project configuration\n# This file overrides ~/.qaforge/config.yaml for this project.\n"
	if opts.global {
		var err error
		if path, err = config.GlobalConfigPath(); err != nil {
			return err
		}
		header = "# qaforge configuration\n"
	}

	backup, err := saveConfigFile(path, header, cfg)
	if err != nil {
		return err
	}

	logger := GetLogger()
	logger.Info().
		Str("event", "config_written").
		Str("path", path).
		Str("backup", backup).
		Msg("configuration saved")

	out := newOutput(w, flags)
	if flags.Output == OutputJSON {
		return out.JSON(initResponse{Success: true, ConfigPath: path, BackupPath: backup})
	}
	if backup != "" {
		out.Info("Previous configuration kept at " + backup)
	}
	out.Success("Configuration written to " + path)
	return nil
}

// saveConfigFile writes cfg as YAML below header. An existing file is copied
// to path+".backup" first, and the backup path is returned.
func saveConfigFile(path, header string, cfg *config.Config) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	var backup string
	if existing, err := os.ReadFile(path); err == nil { //nolint:gosec // path is a fixed config location
		backup = path + ".backup"
		if err := os.WriteFile(backup, existing, 0o600); err != nil {
			logger := GetLogger()
			logger.Warn().Err(err).Str("backup_path", backup).Msg("failed to create config backup")
			backup = ""
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal config")
	}

	content := header + "# Generated by qaforge init on " + time.Now().Format(time.RFC3339) + "\n\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write config file")
	}
	return backup, nil
}

// runInitWizard asks for the paths and pipeline settings.
func runInitWizard(ctx context.Context, cfg *config.Config) error {
	parallel := strconv.Itoa(cfg.Pipeline.Parallel)
	timeout := cfg.Pipeline.StepTimeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Scenarios root").
				Description("Every scenario directory is created here").
				Value(&cfg.OutputDir).
				Validate(notEmpty),
			huh.NewInput().
				Title("Catalog file").
				Description("YAML scenario catalog; leave empty for the built-in catalog").
				Value(&cfg.CatalogFile),
			huh.NewInput().
				Title("Scenario descriptions").
				Description("Document handed to the scripts collaborator").
				Value(&cfg.ScenariosFile),
			huh.NewInput().
				Title("Tools directory").
				Description("Where the collaborator programs live").
				Value(&cfg.ToolsDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Parallel scenarios").
				Value(&parallel).
				Validate(validateParallel),
			huh.NewInput().
				Title("Step timeout").
				Description("Bound for every collaborator invocation, e.g. 10m").
				Value(&timeout).
				Validate(validateTimeout),
			huh.NewConfirm().
				Title("Combine variants in summaries?").
				Description("Also writes summary/all_variants.csv").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.Summary.CombineVariants),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	// The validators already accepted both values.
	cfg.Pipeline.Parallel, _ = strconv.Atoi(parallel)
	cfg.Pipeline.StepTimeout, _ = time.ParseDuration(timeout)
	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput, "value is required")
	}
	return nil
}

func validateParallel(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline, "parallel must be a positive number, got %q", s)
	}
	return nil
}

func validateTimeout(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline, "step timeout must be a positive duration, got %q", s)
	}
	return nil
}
