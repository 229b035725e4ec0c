package steps

import (
	"context"
	"time"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/variant"
)

// VariantsExecutor expands the scenario in-process and writes its variants
// table and metrics record. It has no precondition.
type VariantsExecutor struct{}

// NewVariantsExecutor creates a VariantsExecutor.
func NewVariantsExecutor() *VariantsExecutor {
	return &VariantsExecutor{}
}

// Name returns domain.StepVariants.
func (e *VariantsExecutor) Name() domain.StepName {
	return domain.StepVariants
}

// Execute generates the variants of target.
func (e *VariantsExecutor) Execute(ctx context.Context, target *Target) (*domain.StepResult, error) {
	start := time.Now()
	result := &domain.StepResult{Step: e.Name()}

	metrics, err := variant.NewGenerator(target.Root, target.Global).GenerateScenario(ctx, target.Scenario)
	if err != nil {
		return fail(result, start, err)
	}

	result.Status = constants.StepStatusSuccess
	result.Duration = time.Since(start)
	result.Output = target.Paths.Variants
	result.Metrics = map[string]float64{
		domain.MetricVariantCount:         float64(metrics.VariantCount),
		domain.MetricExpectedVariantCount: float64(metrics.ExpectedVariantCount),
	}
	return result, nil
}

// fail marks result failed with err and returns both.
func fail(result *domain.StepResult, start time.Time, err error) (*domain.StepResult, error) {
	result.Status = constants.StepStatusFailed
	if !start.IsZero() {
		result.Duration = time.Since(start)
	}
	result.Error = err.Error()
	return result, err
}
