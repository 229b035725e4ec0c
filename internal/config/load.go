package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/errors"
)

// newViperInstance creates a new Viper instance with the QAFORGE_ environment
// prefix, key replacer and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(ctx context.Context, v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("output_dir", cfg.OutputDir).
		Dur("pipeline.step_timeout", cfg.Pipeline.StepTimeout).
		Int("pipeline.parallel", cfg.Pipeline.Parallel).
		Str("config_file", v.ConfigFileUsed()).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (QAFORGE_* prefix)
//  2. Project config (.qaforge/config.yaml)
//  3. Global config (~/.qaforge/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(ctx, v)
}

// LoadFile reads configuration from one explicit file over the defaults.
// Environment variables still take precedence. Unlike the discovered
// config files, a missing explicit file is an error.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	v := newViperInstance()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}
	return unmarshalAndValidate(ctx, v)
}

// loadGlobalConfig loads ~/.qaforge/config.yaml if it exists.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil //nolint:nilerr // a missing home directory just skips the layer
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges .qaforge/config.yaml if it exists.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadFromPaths loads configuration from specific file paths. Either path
// can be empty to skip that level.
func LoadFromPaths(ctx context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(ctx, v)
}

// LoadWithOverrides loads configuration (from configFile when set,
// otherwise from the discovered layers) and applies CLI flag overrides.
// Only non-zero override values are applied.
func LoadWithOverrides(ctx context.Context, configFile string, overrides *Config) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if configFile != "" {
		cfg, err = LoadFile(ctx, configFile)
	} else {
		cfg, err = Load(ctx)
	}
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("catalog_file", d.CatalogFile)
	v.SetDefault("scenarios_file", d.ScenariosFile)
	v.SetDefault("tools_dir", d.ToolsDir)

	v.SetDefault("pipeline.step_timeout", d.Pipeline.StepTimeout.String())
	v.SetDefault("pipeline.parallel", d.Pipeline.Parallel)

	v.SetDefault("collaborators.test_data", d.Collaborators.TestData)
	v.SetDefault("collaborators.scripts", d.Collaborators.Scripts)
	v.SetDefault("collaborators.combinatorial", d.Collaborators.Combinatorial)

	v.SetDefault("summary.reports", d.Summary.Reports)
	v.SetDefault("summary.combine_variants", d.Summary.CombineVariants)
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields cannot be overridden to false here because false is
// indistinguishable from unset. CLI code handles those with
// cmd.Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.CatalogFile != "" {
		cfg.CatalogFile = overrides.CatalogFile
	}
	if overrides.ScenariosFile != "" {
		cfg.ScenariosFile = overrides.ScenariosFile
	}
	if overrides.ToolsDir != "" {
		cfg.ToolsDir = overrides.ToolsDir
	}

	if overrides.Pipeline.StepTimeout != 0 {
		cfg.Pipeline.StepTimeout = overrides.Pipeline.StepTimeout
	}
	if overrides.Pipeline.Parallel != 0 {
		cfg.Pipeline.Parallel = overrides.Pipeline.Parallel
	}

	if len(overrides.Collaborators.TestData) > 0 {
		cfg.Collaborators.TestData = overrides.Collaborators.TestData
	}
	if len(overrides.Collaborators.Scripts) > 0 {
		cfg.Collaborators.Scripts = overrides.Collaborators.Scripts
	}
	if len(overrides.Collaborators.Combinatorial) > 0 {
		cfg.Collaborators.Combinatorial = overrides.Collaborators.Combinatorial
	}

	if len(overrides.Summary.Reports) > 0 {
		cfg.Summary.Reports = overrides.Summary.Reports
	}
	if overrides.Summary.CombineVariants {
		cfg.Summary.CombineVariants = true
	}
}

// viperDecoderOption configures mapstructure to decode durations from
// strings and comma separated lists into slices.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
