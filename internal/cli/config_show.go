package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/qaforge/internal/config"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect qaforge configuration",
	}
	cmd.AddCommand(newConfigShowCmd(flags))
	root.AddCommand(cmd)
}

func newConfigShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective qaforge configuration and the files it was read from.

Layers, lowest precedence first:
  - default: built-in defaults
  - global:  ~/.qaforge/config.yaml
  - project: .qaforge/config.yaml
  - env:     QAFORGE_* environment variables

An explicit --config file replaces the global and project layers.

Examples:
  qaforge config show
  qaforge config show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

// configSource is one configuration layer and whether it contributed.
type configSource struct {
	Layer  string `json:"layer"`
	Path   string `json:"path,omitempty"`
	Loaded bool   `json:"loaded"`
}

// configShowResponse is the JSON shape of config show output.
type configShowResponse struct {
	Sources []configSource `json:"sources"`
	Config  map[string]any `json:"config"`
}

func runConfigShow(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	logger := GetLogger()
	cfg, err := config.LoadWithOverrides(logger.WithContext(ctx), flags.ConfigFile, nil)
	if err != nil {
		return err
	}

	sources := configSources(flags.ConfigFile)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	out := newOutput(w, flags)
	if flags.Output == OutputJSON {
		// Round-trip through YAML so keys and durations match the file format.
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrap(err, "failed to convert config")
		}
		return out.JSON(configShowResponse{Sources: sources, Config: doc})
	}

	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		state := tui.StyleDim.Render("not found")
		if s.Loaded {
			state = "loaded"
		}
		rows = append(rows, []string{s.Layer, s.Path, state})
	}
	out.Table([]string{"Layer", "Path", "State"}, rows)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, string(data))
	return nil
}

// configSources lists the layers LoadWithOverrides consults for configFile.
func configSources(configFile string) []configSource {
	sources := []configSource{{Layer: "default", Loaded: true}}

	if configFile != "" {
		return append(sources, configSource{Layer: "file", Path: configFile, Loaded: exists(configFile)})
	}

	if global, err := config.GlobalConfigPath(); err == nil {
		sources = append(sources, configSource{Layer: "global", Path: global, Loaded: exists(global)})
	}
	project := config.ProjectConfigPath()
	sources = append(sources, configSource{Layer: "project", Path: project, Loaded: exists(project)})
	return sources
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
