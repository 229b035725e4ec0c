// Package variant expands scenario parameter axes into concrete variants.
//
// Expansion is a pure function of the scenario definition and the global
// parameter set. The Generator wraps it with the file output of the
// variants pipeline step.
package variant

import (
	"fmt"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
)

// FormatID renders the n-th variant identifier, starting at 1.
func FormatID(n int) string {
	return fmt.Sprintf(constants.VariantIDFormat, n)
}

// EffectiveAxes merges scenario and global axes. Scenario axes come first in
// declared order, followed by the global axes the scenario does not declare.
// On a name collision the scenario's value list replaces the global one
// entirely.
func EffectiveAxes(scenario, global domain.Axes) domain.Axes {
	out := make(domain.Axes, 0, len(scenario)+len(global))
	out = append(out, scenario.Clone()...)
	for _, axis := range global {
		if scenario.Has(axis.Name) {
			continue
		}
		out = append(out, domain.Axis{Name: axis.Name, Values: append([]string(nil), axis.Values...)})
	}
	return out
}

// ExpectedCount multiplies the effective axis cardinalities without
// enumerating.
func ExpectedCount(scenario, global domain.Axes) int {
	return EffectiveAxes(scenario, global).Product()
}

// Expand returns the Cartesian product of the effective axes. Enumeration is
// lexicographic in axis order with the last axis varying fastest, and IDs
// are assigned V00001, V00002, ... in that order. Any axis without values
// is a configuration error.
func Expand(scenarioID string, scenario, global domain.Axes) ([]domain.Variant, error) {
	axes := EffectiveAxes(scenario, global)
	if len(axes) == 0 {
		return nil, errors.Wrapf(errors.ErrConfiguration, "scenario %s has no parameter axes", scenarioID)
	}
	if err := axes.Validate(); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenarioID)
	}

	total := axes.Product()
	variants := make([]domain.Variant, 0, total)
	idx := make([]int, len(axes))

	for n := 1; n <= total; n++ {
		values := make(map[string]string, len(axes))
		for i, axis := range axes {
			values[axis.Name] = axis.Values[idx[i]]
		}
		variants = append(variants, domain.Variant{
			ScenarioID: scenarioID,
			ID:         FormatID(n),
			Values:     values,
		})

		// advance the odometer, last axis first
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i].Values) {
				break
			}
			idx[i] = 0
		}
	}

	return variants, nil
}

// Renumber returns a copy of variants with IDs reassigned sequentially from
// start. Order is preserved. This is the only bridge between the
// per-scenario numbering scope and a batch-wide one.
func Renumber(variants []domain.Variant, start int) []domain.Variant {
	out := make([]domain.Variant, len(variants))
	for i, v := range variants {
		v.ID = FormatID(start + i)
		out[i] = v
	}
	return out
}
