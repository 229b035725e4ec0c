package aggregator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

const statusUnknown = "unknown"

// Collection is the set of scenario summaries found by one scan.
type Collection struct {
	Root        string
	CollectedAt time.Time
	Scenarios   []domain.ScenarioSummary
}

// Collect scans the root and reconstructs one summary per scenario
// directory, sorted by scenario ID. Directories whose names do not start
// with a scenario ID are skipped with a warning; unreadable artifacts leave
// their counts at zero.
func (a *Aggregator) Collect(ctx context.Context) (*Collection, error) {
	entries, err := os.ReadDir(a.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, qaerrors.Wrapf(qaerrors.ErrScenariosRootNotFound, "%s", a.root)
	}
	if err != nil {
		return nil, qaerrors.Wrapf(err, "read scenarios root %s", a.root)
	}

	coll := &Collection{Root: a.root, CollectedAt: a.clock.Now()}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		id, title, ok := artifact.ParseDirName(entry.Name())
		if !ok {
			a.logger.Warn().
				Str("event", "discovery_warning").
				Str("directory", entry.Name()).
				Err(qaerrors.ErrDiscovery).
				Msg("skipping directory without a scenario ID prefix")
			continue
		}
		coll.Scenarios = append(coll.Scenarios, a.summarize(id, title, entry.Name()))
	}

	sort.SliceStable(coll.Scenarios, func(i, j int) bool {
		return coll.Scenarios[i].ScenarioID < coll.Scenarios[j].ScenarioID
	})
	a.logger.Debug().Int("scenarios", len(coll.Scenarios)).Msg("collected scenario metrics")
	return coll, nil
}

func (a *Aggregator) summarize(id, title, dirName string) domain.ScenarioSummary {
	paths := artifact.PathsIn(filepath.Join(a.root, dirName))
	s := domain.ScenarioSummary{
		ScenarioID: id,
		Title:      title,
		Dir:        dirName,
		Parameters: map[string]int{},
		Status:     statusUnknown,
	}
	log := a.logger.With().Str("scenario_id", id).Logger()

	if artifact.Exists(paths.Metrics) {
		if m, err := artifact.ReadMetrics(paths.Metrics); err != nil {
			warn(log, "metrics", paths.Metrics, err)
		} else {
			s.VariantCount = m.VariantCount
			if m.ScenarioTitle != "" {
				s.Title = m.ScenarioTitle
			}
			if m.Parameters != nil {
				s.Parameters = m.Parameters
			}
			if m.Status != "" {
				s.Status = m.Status.String()
			}
		}
	}

	var err error
	if s.TestDataCount, err = artifact.CountRows(paths.TestData); err != nil {
		warn(log, "test data", paths.TestData, err)
	}
	if s.ScriptCount, err = artifact.CountScripts(paths.ScriptsDir); err != nil {
		warn(log, "scripts", paths.ScriptsDir, err)
	}
	plan, err := artifact.ParsePlanReport(paths.Plan)
	if err != nil {
		warn(log, "combinatorial plan", paths.Plan, err)
	}
	s.CoveragePct = plan.CoveragePct
	s.OptimizedCount = plan.OptimizedCount
	return s
}

func warn(log zerolog.Logger, what, path string, err error) {
	log.Warn().Err(err).Str("path", path).Msgf("failed to read %s", what)
}

// TotalVariants sums the variant counts of all scenarios.
func (c *Collection) TotalVariants() int {
	n := 0
	for _, s := range c.Scenarios {
		n += s.VariantCount
	}
	return n
}
