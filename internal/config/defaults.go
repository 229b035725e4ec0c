package config

import (
	"github.com/mrz1836/qaforge/internal/constants"
)

// Default collaborator argv templates.
//
//nolint:gochecknoglobals // default command tables
var (
	DefaultTestDataCommand = []string{
		"python3", "{{.ToolsDir}}/generate_test_data.py",
		"--scenario", "{{.ScenarioID}}",
		"--variants", "{{.VariantsFile}}",
		"--output", "{{.TestDataFile}}",
	}
	DefaultScriptsCommand = []string{
		"python3", "{{.ToolsDir}}/generate_test_scripts_from_variants.py",
		"{{.ScenariosFile}}", "{{.VariantsFile}}", "{{.TestDataFile}}",
		"--output", "{{.ScriptsDir}}",
	}
	DefaultCombinatorialCommand = []string{
		"python3", "{{.ToolsDir}}/combinatorial.py",
		"{{.VariantsFile}}",
		"--output", "{{.PlanFile}}",
	}
)

// DefaultConfig returns a new Config with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:     constants.DefaultOutputDir,
		ScenariosFile: constants.DefaultScenariosFile,
		ToolsDir:      constants.DefaultToolsDir,
		Pipeline: PipelineConfig{
			StepTimeout: constants.DefaultStepTimeout,
			Parallel:    1,
		},
		Collaborators: CollaboratorsConfig{
			TestData:      append([]string(nil), DefaultTestDataCommand...),
			Scripts:       append([]string(nil), DefaultScriptsCommand...),
			Combinatorial: append([]string(nil), DefaultCombinatorialCommand...),
		},
		Summary: SummaryConfig{
			Reports: []string{"all"},
		},
	}
}
