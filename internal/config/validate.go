package config

import (
	"github.com/mrz1836/qaforge/internal/errors"
)

// Validate checks the configuration for invalid values and returns the
// first failure found.
//
// Validation rules:
//   - output_dir must not be empty
//   - pipeline.step_timeout must be positive
//   - pipeline.parallel must be at least 1
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.OutputDir == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput, "output_dir must not be empty")
	}

	return validatePipelineConfig(&cfg.Pipeline)
}

func validatePipelineConfig(cfg *PipelineConfig) error {
	if cfg.StepTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.step_timeout must be positive, got %s", cfg.StepTimeout)
	}

	if cfg.Parallel < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPipeline,
			"pipeline.parallel must be at least 1, got %d", cfg.Parallel)
	}

	return nil
}
