package artifact

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrz1836/qaforge/internal/constants"
)

var (
	coveragePattern = regexp.MustCompile(`(?i)Coverage Percentage:[*\s]*(\d+(?:\.\d+)?)\s*%?`)
	casesPattern    = regexp.MustCompile(`(?i)Test Cases Generated:[*\s]*(\d+)`)
	errNotDirectory = errors.New("not a directory")
)

// CountRows returns the number of data rows in a table file: lines minus
// one header line. A missing or empty file yields zero.
func CountRows(path string) (int, error) {
	f, err := os.Open(path) //#nosec G304 -- path is constructed internally
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	lines, err := countLines(f)
	if err != nil {
		return 0, err
	}
	if lines <= 1 {
		return 0, nil
	}
	return lines - 1, nil
}

// countLines counts newline-terminated lines plus a final unterminated one.
func countLines(r io.Reader) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 32*1024)
	var (
		count int
		last  byte
		seen  bool
	)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if seen && last != '\n' {
		count++
	}
	return count, nil
}

// CountScripts returns the number of script files in dir. A missing
// directory yields zero.
func CountScripts(dir string) (int, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, errNotDirectory
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), constants.ScriptFileExt) {
			n++
		}
	}
	return n, nil
}

// PlanReport holds the two fields read from a combinatorial plan.
type PlanReport struct {
	CoveragePct    float64
	OptimizedCount int
	HasCoverage    bool
	HasCount       bool
}

// ParsePlan extracts the coverage percentage and generated case count from
// report text. Missing fields stay zero.
func ParsePlan(text string) PlanReport {
	var r PlanReport
	if m := coveragePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.CoveragePct, r.HasCoverage = v, true
		}
	}
	if m := casesPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			r.OptimizedCount, r.HasCount = v, true
		}
	}
	return r
}

// ParsePlanReport reads and parses a plan file. A missing file yields an
// empty report.
func ParsePlanReport(path string) (PlanReport, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed internally
	if errors.Is(err, fs.ErrNotExist) {
		return PlanReport{}, nil
	}
	if err != nil {
		return PlanReport{}, err
	}
	return ParsePlan(string(data)), nil
}
