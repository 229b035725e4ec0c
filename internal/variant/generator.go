package variant

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/ctxutil"
	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

// Generator writes the variants table and metrics record of scenarios under
// a scenarios root.
type Generator struct {
	root   string
	global domain.Axes
}

// NewGenerator creates a Generator for root using the given global axes.
func NewGenerator(root string, global domain.Axes) *Generator {
	return &Generator{root: root, global: global.Clone()}
}

// Root returns the scenarios root the generator writes into.
func (g *Generator) Root() string {
	return g.root
}

// GenerateScenario expands def and overwrites its variants table and
// metrics record. A count mismatch is logged and does not fail the
// scenario. On an expansion error a failed metrics record is written, any
// stale variants table is removed, and the error is returned together with
// the record.
func (g *Generator) GenerateScenario(ctx context.Context, def domain.ScenarioDefinition) (*domain.ScenarioMetrics, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx).With().Str("scenario_id", def.ID).Logger()

	paths := artifact.PathsFor(g.root, def)
	if err := artifact.EnsureDir(paths.Dir); err != nil {
		return nil, err
	}

	axes := EffectiveAxes(def.Parameters, g.global)
	metrics := &domain.ScenarioMetrics{
		ScenarioID:           def.ID,
		ScenarioTitle:        def.Title,
		ExpectedVariantCount: axes.Product(),
		Parameters:           axes.Cardinalities(),
		OutputFile:           paths.Variants,
		Status:               constants.MetricsStatusSuccess,
	}

	if metrics.ExpectedVariantCount > constants.LargeVariantCount {
		log.Warn().
			Int("expected_variant_count", metrics.ExpectedVariantCount).
			Msg("large variant count")
	}

	variants, err := Expand(def.ID, def.Parameters, g.global)
	if err == nil {
		err = artifact.WriteVariants(paths.Variants, variants)
	}
	if err != nil {
		return g.fail(ctx, paths, metrics, err)
	}

	metrics.VariantCount = len(variants)
	if !metrics.Consistent() {
		log.Warn().
			Str("event", "consistency_warning").
			Err(qaerrors.ErrConsistency).
			Int("variant_count", metrics.VariantCount).
			Int("expected_variant_count", metrics.ExpectedVariantCount).
			Msg("variant count differs from expected product")
	}

	if err := artifact.WriteMetrics(paths.Metrics, metrics); err != nil {
		return metrics, qaerrors.Wrapf(err, "write metrics for %s", def.ID)
	}

	log.Debug().
		Int("variant_count", metrics.VariantCount).
		Str("output_file", paths.Variants).
		Msg("variants generated")
	return metrics, nil
}

func (g *Generator) fail(ctx context.Context, paths artifact.Paths, metrics *domain.ScenarioMetrics, cause error) (*domain.ScenarioMetrics, error) {
	msg := cause.Error()
	metrics.Status = constants.MetricsStatusFailed
	metrics.ErrorMessage = &msg

	if err := os.Remove(paths.Variants); err != nil && !errors.Is(err, fs.ErrNotExist) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", paths.Variants).Msg("failed to remove stale variants")
	}
	if err := artifact.WriteMetrics(paths.Metrics, metrics); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", paths.Metrics).Msg("failed to write metrics")
	}
	return metrics, qaerrors.Wrapf(cause, "scenario %s", metrics.ScenarioID)
}

// MonolithicResult describes a single-file variant set.
type MonolithicResult struct {
	Path          string         `json:"path"`
	TotalVariants int            `json:"total_variants"`
	PerScenario   map[string]int `json:"per_scenario"`

	// Skipped maps scenarios left out because their axes are invalid to
	// the reason.
	Skipped map[string]string `json:"skipped,omitempty"`
}

// GenerateMonolithic writes every scenario's variants into one table at
// path. IDs are numbered across the whole file, in the order defs are
// given. A scenario whose axes are invalid is left out and listed in
// Skipped; the others are still written. Per-scenario files are not
// touched.
func (g *Generator) GenerateMonolithic(ctx context.Context, defs []domain.ScenarioDefinition, path string) (*MonolithicResult, error) {
	log := zerolog.Ctx(ctx)
	result := &MonolithicResult{Path: path, PerScenario: make(map[string]int, len(defs))}

	var all []domain.Variant
	for _, def := range defs {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}
		variants, err := Expand(def.ID, def.Parameters, g.global)
		if err != nil {
			if !errors.Is(err, qaerrors.ErrConfiguration) {
				return nil, err
			}
			if result.Skipped == nil {
				result.Skipped = make(map[string]string)
			}
			result.Skipped[def.ID] = err.Error()
			log.Warn().Err(err).Str("scenario_id", def.ID).Msg("scenario left out of monolithic variants")
			continue
		}
		all = append(all, Renumber(variants, len(all)+1)...)
		result.PerScenario[def.ID] = len(variants)
	}

	if err := artifact.WriteVariants(path, all); err != nil {
		return nil, qaerrors.Wrapf(err, "write %s", filepath.Base(path))
	}
	result.TotalVariants = len(all)

	log.Info().
		Int("total_variants", result.TotalVariants).
		Int("scenarios", len(defs)).
		Str("output_file", path).
		Msg("monolithic variants generated")
	return result, nil
}
