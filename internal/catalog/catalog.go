// Package catalog holds the immutable registry of scenario definitions.
//
// A Catalog is built once at startup, from a YAML file or the embedded
// default, and passed explicitly to the expander and the orchestrator.
// Nothing mutates a Catalog after New returns; every accessor hands out
// copies.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
)

// idPattern is the required shape of a scenario identifier.
var idPattern = regexp.MustCompile(`^TS-\d{3}$`)

// Catalog maps scenario identifiers to their definitions together with the
// global parameter set shared by every scenario.
type Catalog struct {
	global    domain.Axes
	scenarios map[string]domain.ScenarioDefinition
	invalid   map[string]error
	ids       []string
}

// New validates the definitions and builds a Catalog.
//
// Identifiers must match TS-\d{3} and be unique, titles must be non-empty,
// and the global axes must be valid; any violation rejects the catalog.
// A scenario whose own axes are invalid (an empty axis, a repeated value)
// is kept with its error recorded, so it fails alone when processed. See
// Validation.
func New(global domain.Axes, scenarios []domain.ScenarioDefinition) (*Catalog, error) {
	if err := global.Validate(); err != nil {
		return nil, errors.Wrap(err, "global parameters")
	}

	c := &Catalog{
		global:    global.Clone(),
		scenarios: make(map[string]domain.ScenarioDefinition, len(scenarios)),
		invalid:   make(map[string]error),
		ids:       make([]string, 0, len(scenarios)),
	}

	for _, def := range scenarios {
		if !idPattern.MatchString(def.ID) {
			return nil, fmt.Errorf("%w: scenario id %q does not match TS-NNN", errors.ErrConfiguration, def.ID)
		}
		if _, dup := c.scenarios[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario id %q", errors.ErrConfiguration, def.ID)
		}
		if strings.TrimSpace(def.Title) == "" {
			return nil, fmt.Errorf("%w: scenario %s has no title", errors.ErrConfiguration, def.ID)
		}
		if err := def.Parameters.Validate(); err != nil {
			c.invalid[def.ID] = errors.Wrapf(err, "scenario %s", def.ID)
		}
		c.scenarios[def.ID] = def.Clone()
		c.ids = append(c.ids, def.ID)
	}

	sort.Strings(c.ids)
	return c, nil
}

// Get returns a copy of the definition for id.
func (c *Catalog) Get(id string) (domain.ScenarioDefinition, bool) {
	def, ok := c.scenarios[id]
	if !ok {
		return domain.ScenarioDefinition{}, false
	}
	return def.Clone(), true
}

// Lookup is Get with an ErrUnknownScenario error for missing IDs.
func (c *Catalog) Lookup(id string) (domain.ScenarioDefinition, error) {
	def, ok := c.Get(id)
	if !ok {
		return domain.ScenarioDefinition{}, errors.Wrapf(errors.ErrUnknownScenario, "scenario %s", id)
	}
	return def, nil
}

// Validation returns the configuration error recorded for id, or nil when
// the scenario's axes are valid or the ID is unknown.
func (c *Catalog) Validation(id string) error {
	return c.invalid[id]
}

// Invalid returns the IDs of scenarios with invalid axes in ascending order.
func (c *Catalog) Invalid() []string {
	ids := make([]string, 0, len(c.invalid))
	for _, id := range c.ids {
		if _, bad := c.invalid[id]; bad {
			ids = append(ids, id)
		}
	}
	return ids
}

// IDs returns all scenario identifiers in ascending order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Definitions returns every definition in ID order.
func (c *Catalog) Definitions() []domain.ScenarioDefinition {
	out := make([]domain.ScenarioDefinition, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.scenarios[id].Clone())
	}
	return out
}

// Global returns a copy of the global parameter set.
func (c *Catalog) Global() domain.Axes {
	return c.global.Clone()
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Select resolves the requested identifiers in request order. Identifiers
// the catalog does not know are returned separately so the caller can
// report them per scenario instead of aborting the batch.
func (c *Catalog) Select(ids []string) (found []domain.ScenarioDefinition, unknown []string) {
	for _, id := range ids {
		def, ok := c.Get(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		found = append(found, def)
	}
	return found, unknown
}

// ParseIDs splits a comma separated list such as "TS-001, TS-002".
// Blank entries are dropped and duplicates keep their first position.
func ParseIDs(list string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, part := range strings.Split(list, ",") {
		id := strings.ToUpper(strings.TrimSpace(part))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
