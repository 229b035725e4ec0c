package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/qaforge/internal/config"
)

const testCatalogYAML = `
global_parameters:
  Browser: [Chrome, Firefox]

scenarios:
  TS-001:
    title: Login Flow
    parameters:
      Input: [Valid, Invalid, Empty]
  TS-002:
    title: Search
    parameters:
      Query: [Short, Long]
`

// project is a throwaway workspace with a catalog and a config file.
type project struct {
	dir    string
	root   string
	config string
}

// newProject writes a two-scenario catalog and a config pointing at it.
// HOME and QAFORGE_HOME are redirected so nothing touches the real home.
// mutate may adjust the config before it is written.
func newProject(t *testing.T, mutate func(*config.Config)) *project {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("QAFORGE_HOME", filepath.Join(dir, ".qaforge"))
	t.Cleanup(CloseLogFile)

	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogYAML), 0o600))

	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "deliverables", "scenarios")
	cfg.CatalogFile = catalogPath
	cfg.ScenariosFile = filepath.Join(dir, "scenarios.md")
	if mutate != nil {
		mutate(cfg)
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	configPath := filepath.Join(dir, "qaforge.yaml")
	require.NoError(t, os.WriteFile(configPath, data, 0o600))

	return &project{dir: dir, root: cfg.OutputDir, config: configPath}
}

// execute runs the root command with --config and returns stdout.
func (p *project) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCmd(t, append([]string{"--config", p.config, "--quiet"}, args...)...)
}

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// writesFile returns an sh collaborator that writes content to the rendered
// path given as its last argument.
func writesFile(content, pathTemplate string) []string {
	return []string{"sh", "-c", `printf '%s' "$1" > "$0"`, pathTemplate, content}
}

// failsWith returns an sh collaborator that prints msg to stderr and exits 3.
func failsWith(msg string) []string {
	return []string{"sh", "-c", `echo "$0" >&2; exit 3`, msg}
}
