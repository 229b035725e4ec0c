package domain

import "github.com/mrz1836/qaforge/internal/constants"

// ScenarioDefinition is a named, parameterized test situation.
// Definitions are owned by the catalog and read-only everywhere else.
type ScenarioDefinition struct {
	// ID matches TS-\d{3} and is unique within a catalog.
	ID string `json:"id"`

	// Title is free text; it also names the scenario's output directory.
	Title string `json:"title"`

	// Parameters are the scenario-specific axes in declaration order.
	Parameters Axes `json:"parameters"`
}

// Clone returns a deep copy of the definition.
func (d ScenarioDefinition) Clone() ScenarioDefinition {
	d.Parameters = d.Parameters.Clone()
	return d
}

// Variant is one concrete combination of axis values for a scenario.
type Variant struct {
	// ScenarioID is a back-reference to the owning scenario.
	ScenarioID string `json:"scenario_id"`

	// ID is V followed by a zero-padded sequence number. It is unique only
	// within its numbering scope (one scenario, or one combined artifact).
	ID string `json:"variant_id"`

	// Values holds one value per effective axis.
	Values map[string]string `json:"values"`
}

// ScenarioMetrics is the per-scenario record persisted next to the variants
// table. It is overwritten on every run.
//
// Example JSON representation:
//
//	{
//	    "scenario_id": "TS-001",
//	    "scenario_title": "Successful Account Creation and Login",
//	    "variant_count": 216,
//	    "expected_variant_count": 216,
//	    "parameters": {"Browser": 4, "Device": 3},
//	    "output_file": "deliverables/scenarios/TS-001_.../variants.csv",
//	    "status": "success",
//	    "error_message": null
//	}
type ScenarioMetrics struct {
	ScenarioID           string                  `json:"scenario_id"`
	ScenarioTitle        string                  `json:"scenario_title"`
	VariantCount         int                     `json:"variant_count"`
	ExpectedVariantCount int                     `json:"expected_variant_count"`
	Parameters           map[string]int          `json:"parameters"`
	OutputFile           string                  `json:"output_file"`
	Status               constants.MetricsStatus `json:"status"`
	ErrorMessage         *string                 `json:"error_message"`
}

// Consistent reports whether the actual count matches the expected product.
func (m ScenarioMetrics) Consistent() bool {
	return m.VariantCount == m.ExpectedVariantCount
}
