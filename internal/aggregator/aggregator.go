// Package aggregator rebuilds scenario summaries from what is on disk under
// a scenarios root and writes batch-wide reports from them.
//
// The aggregator keeps no record of what the orchestrator did. Every run is
// a read-only scan of the scenario directories followed by one write per
// requested report into the summary directory next to the root. It never
// touches a scenario's own artifacts.
//
// Import rules:
//   - CAN import: internal/artifact, internal/domain, internal/constants,
//     internal/errors, internal/variant, internal/clock
//   - MUST NOT import: internal/orchestrator, internal/steps, internal/cli
package aggregator

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/clock"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/errors"
)

// Report names accepted by ParseReports.
const (
	ReportMetrics = "metrics"
	ReportIndex   = "index"
	ReportAll     = "all"
)

// Reports selects which reports a run writes.
type Reports struct {
	Dashboard bool
	Index     bool
}

// ParseReports turns report names into a selection. "all" selects every
// report; an unknown name yields ErrUnknownReport.
func ParseReports(names []string) (Reports, error) {
	var r Reports
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			switch name := strings.ToLower(strings.TrimSpace(part)); name {
			case "":
			case ReportMetrics:
				r.Dashboard = true
			case ReportIndex:
				r.Index = true
			case ReportAll:
				r.Dashboard, r.Index = true, true
			default:
				return Reports{}, errors.Wrapf(errors.ErrUnknownReport, "%q (valid: metrics, index, all)", name)
			}
		}
	}
	return r, nil
}

// Aggregator scans one scenarios root.
type Aggregator struct {
	root   string
	logger zerolog.Logger
	clock  clock.Clock
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used for report timestamps.
func WithClock(c clock.Clock) Option {
	return func(a *Aggregator) {
		a.clock = c
	}
}

// New creates an Aggregator for root.
func New(root string, logger zerolog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		root:   filepath.Clean(root),
		logger: logger,
		clock:  clock.RealClock{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Root returns the scenarios root.
func (a *Aggregator) Root() string {
	return a.root
}

// SummaryDir returns the directory reports are written to.
func (a *Aggregator) SummaryDir() string {
	return artifact.SummaryDir(a.root)
}

// Result describes what one Run produced.
type Result struct {
	SummaryDir       string
	Scenarios        int
	TotalVariants    int
	CombinedVariants int
	Files            []string

	// Collection is the scan the reports were built from.
	Collection *Collection
}

// Run collects every scenario and writes the selected reports. When combine
// is set the combined variants table is written as well.
func (a *Aggregator) Run(ctx context.Context, reports Reports, combine bool) (*Result, error) {
	coll, err := a.Collect(ctx)
	if err != nil {
		return nil, err
	}

	dir := a.SummaryDir()
	if err := artifact.EnsureDir(dir); err != nil {
		return nil, err
	}
	result := &Result{
		SummaryDir:    dir,
		Scenarios:     len(coll.Scenarios),
		TotalVariants: coll.TotalVariants(),
		Collection:    coll,
	}

	if reports.Dashboard {
		path := filepath.Join(dir, constants.DashboardFileName)
		if err := coll.WriteDashboard(path); err != nil {
			return result, errors.Wrap(err, "write metrics dashboard")
		}
		result.Files = append(result.Files, path)
		a.logger.Info().Str("path", path).Msg("metrics dashboard generated")
	}

	if reports.Index {
		path := filepath.Join(dir, constants.IndexFileName)
		if err := coll.WriteIndex(path); err != nil {
			return result, errors.Wrap(err, "write scenario index")
		}
		result.Files = append(result.Files, path)
		a.logger.Info().Str("path", path).Msg("scenario index generated")
	}

	if combine {
		path := filepath.Join(dir, constants.CombinedVariantsFileName)
		n, err := coll.CombineVariants(a.logger.WithContext(ctx), path)
		if err != nil {
			return result, errors.Wrap(err, "combine variants")
		}
		result.CombinedVariants = n
		if n > 0 {
			result.Files = append(result.Files, path)
			a.logger.Info().Str("path", path).Int("variants", n).Int("scenarios", len(coll.Scenarios)).Msg("variants combined")
		}
	}

	a.logger.Info().
		Int("scenarios", result.Scenarios).
		Int("total_variants", result.TotalVariants).
		Str("summary_dir", dir).
		Msg("summary aggregation complete")
	return result, nil
}
