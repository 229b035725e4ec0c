package orchestrator

import (
	"strings"

	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
)

// AllSteps returns every pipeline step in pipeline order.
func AllSteps() []domain.StepName {
	return append([]domain.StepName(nil), domain.PipelineOrder...)
}

// ParseSteps parses a comma separated step list such as "variants,test-data".
// The result is de-duplicated and put in pipeline order. An unknown name
// yields ErrUnknownStep, an empty list ErrNoSteps.
func ParseSteps(list string) ([]domain.StepName, error) {
	var names []domain.StepName
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		names = append(names, domain.StepName(name))
	}
	return NormalizeSteps(names)
}

// NormalizeSteps validates names and returns them in pipeline order without
// duplicates.
func NormalizeSteps(names []domain.StepName) ([]domain.StepName, error) {
	if len(names) == 0 {
		return nil, errors.ErrNoSteps
	}
	requested := make(map[domain.StepName]bool, len(names))
	for _, name := range names {
		if name.Rank() < 0 {
			return nil, errors.Wrapf(errors.ErrUnknownStep, "%q (valid: variants, test-data, scripts, combinatorial)", name)
		}
		requested[name] = true
	}

	out := make([]domain.StepName, 0, len(requested))
	for _, name := range domain.PipelineOrder {
		if requested[name] {
			out = append(out, name)
		}
	}
	return out, nil
}
