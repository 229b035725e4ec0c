// Package config provides configuration management for qaforge with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (QAFORGE_* prefix)
//  3. Project config (.qaforge/config.yaml)
//  4. Global config (~/.qaforge/config.yaml)
//  5. Built-in defaults
//
// An explicit config file (--config) replaces the project and global layers.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for qaforge.
type Config struct {
	// OutputDir is the scenarios root every scenario directory is created under.
	// Default: deliverables/scenarios
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// CatalogFile points to a YAML scenario catalog. Empty means the
	// built-in catalog.
	CatalogFile string `yaml:"catalog_file" mapstructure:"catalog_file"`

	// ScenariosFile is the scenario-description document handed to the
	// scripts collaborator.
	// Default: test_scenarios.md
	ScenariosFile string `yaml:"scenarios_file" mapstructure:"scenarios_file"`

	// ToolsDir is where the collaborator programs live. It is exposed to
	// collaborator templates as {{.ToolsDir}}.
	// Default: scripts
	ToolsDir string `yaml:"tools_dir" mapstructure:"tools_dir"`

	// Pipeline contains settings for step execution.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`

	// Collaborators holds the argv templates of the external steps.
	Collaborators CollaboratorsConfig `yaml:"collaborators" mapstructure:"collaborators"`

	// Summary contains settings for the summary command.
	Summary SummaryConfig `yaml:"summary" mapstructure:"summary"`
}

// PipelineConfig contains settings for step execution.
type PipelineConfig struct {
	// StepTimeout bounds every collaborator invocation.
	// Default: 600s
	StepTimeout time.Duration `yaml:"step_timeout" mapstructure:"step_timeout"`

	// Parallel is the number of scenarios processed at once.
	// Default: 1 (sequential)
	Parallel int `yaml:"parallel" mapstructure:"parallel"`
}

// CollaboratorsConfig holds one argv template per external step. Every
// element is a text/template with the sprig functions, for example
//
//	["python3", "{{.ToolsDir}}/combinatorial.py", "{{.VariantsFile}}", "--output", "{{.PlanFile}}"]
type CollaboratorsConfig struct {
	TestData      []string `yaml:"test_data" mapstructure:"test_data"`
	Scripts       []string `yaml:"scripts" mapstructure:"scripts"`
	Combinatorial []string `yaml:"combinatorial" mapstructure:"combinatorial"`
}

// SummaryConfig contains settings for summary aggregation.
type SummaryConfig struct {
	// Reports lists the reports to write: metrics, index or all.
	// Default: [all]
	Reports []string `yaml:"reports" mapstructure:"reports"`

	// CombineVariants also writes the combined variants table.
	CombineVariants bool `yaml:"combine_variants" mapstructure:"combine_variants"`
}
