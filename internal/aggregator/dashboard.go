package aggregator

import (
	"bytes"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/domain"
)

const (
	checkYes = "✓"
	checkNo  = "✗"
)

// WriteDashboard writes the markdown metrics dashboard to path.
func (c *Collection) WriteDashboard(path string) error {
	return artifact.WriteFileAtomic(path, c.Dashboard())
}

// Dashboard renders the markdown metrics dashboard. Counts use thousands
// separators.
func (c *Collection) Dashboard() []byte {
	p := message.NewPrinter(language.English)
	var b bytes.Buffer

	p.Fprintf(&b, "# QA Artifacts Metrics Dashboard\n\n")
	p.Fprintf(&b, "**Generated:** %s\n\n", c.CollectedAt.Format("2006-01-02 15:04:05"))
	p.Fprintf(&b, "**Source:** %s\n\n", c.Root)

	var totalVariants, totalData, totalScripts, totalOptimized int
	for _, s := range c.Scenarios {
		totalVariants += s.VariantCount
		totalData += s.TestDataCount
		totalScripts += s.ScriptCount
		totalOptimized += s.OptimizedCount
	}

	p.Fprintf(&b, "## Overall Statistics\n\n")
	p.Fprintf(&b, "- **Total Scenarios:** %d\n", len(c.Scenarios))
	p.Fprintf(&b, "- **Total Variants (Exhaustive):** %d\n", totalVariants)
	if totalData > 0 {
		p.Fprintf(&b, "- **Total Test Data Rows:** %d\n", totalData)
	}
	if totalScripts > 0 {
		p.Fprintf(&b, "- **Total Test Scripts:** %d\n", totalScripts)
	}
	if totalOptimized > 0 {
		p.Fprintf(&b, "- **Total Optimized Test Cases:** %d\n", totalOptimized)
		p.Fprintf(&b, "- **Overall Reduction:** %.1f%%\n", reduction(totalVariants, totalOptimized))
	}
	avg := 0.0
	if len(c.Scenarios) > 0 {
		avg = float64(totalVariants) / float64(len(c.Scenarios))
	}
	p.Fprintf(&b, "- **Avg Variants per Scenario:** %.1f\n\n", avg)

	withVariants := filter(c.Scenarios, func(s domain.ScenarioSummary) bool { return s.HasVariants() })

	p.Fprintf(&b, "## Variant Distribution\n\n")
	if len(withVariants) > 0 {
		lo, hi := withVariants[0], withVariants[0]
		for _, s := range withVariants[1:] {
			if s.VariantCount < lo.VariantCount {
				lo = s
			}
			if s.VariantCount > hi.VariantCount {
				hi = s
			}
		}
		p.Fprintf(&b, "- **Min:** %d variants (%s: %s)\n", lo.VariantCount, lo.ScenarioID, lo.Title)
		p.Fprintf(&b, "- **Max:** %d variants (%s: %s)\n\n", hi.VariantCount, hi.ScenarioID, hi.Title)

		top := append([]domain.ScenarioSummary(nil), withVariants...)
		sort.SliceStable(top, func(i, j int) bool { return top[i].VariantCount > top[j].VariantCount })
		if len(top) > constants.TopScenarioCount {
			top = top[:constants.TopScenarioCount]
		}
		p.Fprintf(&b, "### Top %d Scenarios by Variant Count\n\n", constants.TopScenarioCount)
		b.WriteString("| Rank | Scenario ID | Title | Variants |\n")
		b.WriteString("|------|-------------|-------|----------|\n")
		for i, s := range top {
			p.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, s.ScenarioID, cell(truncateTitle(s.Title)), s.VariantCount)
		}
		b.WriteString("\n")
	}

	optimized := filter(c.Scenarios, func(s domain.ScenarioSummary) bool { return s.HasPlan() })
	if len(optimized) > 0 {
		coverage := 0.0
		for _, s := range optimized {
			coverage += s.CoveragePct
		}
		p.Fprintf(&b, "## Combinatorial Optimization\n\n")
		p.Fprintf(&b, "- **Scenarios Optimized:** %d\n", len(optimized))
		p.Fprintf(&b, "- **Average Coverage:** %.1f%%\n\n", coverage/float64(len(optimized)))

		b.WriteString("### Optimization Results\n\n")
		b.WriteString("| Scenario ID | Exhaustive | Optimized | Reduction | Coverage |\n")
		b.WriteString("|-------------|------------|-----------|-----------|----------|\n")
		for _, s := range optimized {
			p.Fprintf(&b, "| %s | %d | %d | %.1f%% | %.1f%% |\n",
				s.ScenarioID, s.VariantCount, s.OptimizedCount, reduction(s.VariantCount, s.OptimizedCount), s.CoveragePct)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Artifacts Completion Status\n\n")
	b.WriteString("| Scenario ID | Variants | Test Data | Scripts | Optimized |\n")
	b.WriteString("|-------------|----------|-----------|---------|-----------|\n")
	for _, s := range c.Scenarios {
		p.Fprintf(&b, "| %s | %s (%d) | %s (%d) | %s (%d) | %s (%d) |\n",
			s.ScenarioID,
			check(s.HasVariants()), s.VariantCount,
			check(s.HasTestData()), s.TestDataCount,
			check(s.HasScripts()), s.ScriptCount,
			check(s.HasPlan()), s.OptimizedCount)
	}
	return b.Bytes()
}

// reduction is the share of exhaustive variants the optimized plan drops.
func reduction(exhaustive, optimized int) float64 {
	if exhaustive <= 0 {
		return 0
	}
	return float64(exhaustive-optimized) / float64(exhaustive) * 100
}

func truncateTitle(title string) string {
	return runewidth.Truncate(title, constants.MaxDashboardTitleWidth, "")
}

// cell escapes pipes so a title cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func check(ok bool) string {
	if ok {
		return checkYes
	}
	return checkNo
}

func filter(in []domain.ScenarioSummary, keep func(domain.ScenarioSummary) bool) []domain.ScenarioSummary {
	var out []domain.ScenarioSummary
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
