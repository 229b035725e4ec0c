package aggregator

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/variant"
)

// CombineVariants concatenates every scenario's variants table in scenario
// ID order and writes it to path. Variant IDs are renumbered from V00001
// across the whole combined table, replacing each scenario's own
// numbering. It returns the number of rows written; with no variants
// nothing is written.
func (c *Collection) CombineVariants(ctx context.Context, path string) (int, error) {
	log := zerolog.Ctx(ctx)

	var all []domain.Variant
	for _, s := range c.Scenarios {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		file := artifact.PathsIn(filepath.Join(c.Root, s.Dir)).Variants
		if !artifact.Exists(file) {
			continue
		}
		rows, err := artifact.ReadVariants(file)
		if err != nil {
			log.Warn().Err(err).Str("scenario_id", s.ScenarioID).Str("path", file).Msg("failed to read variants")
			continue
		}
		all = append(all, rows...)
	}

	if len(all) == 0 {
		log.Warn().Msg("no variants found to combine")
		return 0, nil
	}
	if err := artifact.WriteVariants(path, variant.Renumber(all, 1)); err != nil {
		return 0, err
	}
	return len(all), nil
}
