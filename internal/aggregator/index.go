package aggregator

import (
	"time"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/domain"
)

// Index is the machine-readable scenario index.
type Index struct {
	GeneratedAt    time.Time                `json:"generated_at"`
	ScenariosDir   string                   `json:"scenarios_dir"`
	TotalScenarios int                      `json:"total_scenarios"`
	Scenarios      []domain.ScenarioSummary `json:"scenarios"`
}

// Index returns the index of the collection.
func (c *Collection) Index() Index {
	scenarios := c.Scenarios
	if scenarios == nil {
		scenarios = []domain.ScenarioSummary{}
	}
	return Index{
		GeneratedAt:    c.CollectedAt,
		ScenariosDir:   c.Root,
		TotalScenarios: len(scenarios),
		Scenarios:      scenarios,
	}
}

// WriteIndex writes the scenario index as JSON to path.
func (c *Collection) WriteIndex(path string) error {
	data, err := artifact.EncodeJSON(c.Index())
	if err != nil {
		return err
	}
	return artifact.WriteFileAtomic(path, data)
}
