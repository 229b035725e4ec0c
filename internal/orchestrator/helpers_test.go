package orchestrator_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/qaforge/internal/catalog"
	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/errors"
	"github.com/mrz1836/qaforge/internal/steps"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	global := domain.Axes{{Name: "Browser", Values: []string{"Chrome", "Firefox"}}}
	c, err := catalog.New(global, []domain.ScenarioDefinition{
		{ID: "TS-001", Title: "Login", Parameters: domain.Axes{{Name: "Input", Values: []string{"Valid", "Invalid"}}}},
		{ID: "TS-002", Title: "Checkout", Parameters: domain.Axes{{Name: "Payment", Values: []string{"Card", "Wallet", "Cash"}}}},
		{ID: "TS-003", Title: "Search", Parameters: domain.Axes{{Name: "Query", Values: []string{"Empty", "Long"}}}},
	})
	require.NoError(t, err)
	return c
}

// Each collaborator receives its output path as the last argument.
func testCommands() steps.Commands {
	return steps.Commands{
		domain.StepTestData:      {"gen-data", "{{.TestDataFile}}"},
		domain.StepScripts:       {"gen-scripts", "{{.ScriptsDir}}"},
		domain.StepCombinatorial: {"gen-plan", "{{.PlanFile}}"},
	}
}

// artifactRunner pretends to be the external collaborators by writing a
// plausible artifact to the output path, unless a failure is scripted.
type artifactRunner struct {
	mu    sync.Mutex
	calls map[domain.StepName]int
	fail  map[domain.StepName]bool
}

func newArtifactRunner() *artifactRunner {
	return &artifactRunner{calls: make(map[domain.StepName]int), fail: make(map[domain.StepName]bool)}
}

func (r *artifactRunner) RunStep(_ context.Context, name domain.StepName, args []string) (steps.ExitOutcome, error) {
	r.mu.Lock()
	r.calls[name]++
	failing := r.fail[name]
	r.mu.Unlock()

	if failing {
		return steps.ExitOutcome{ExitCode: 1, Stderr: "collaborator exploded"}, nil
	}

	out := args[len(args)-1]
	var err error
	switch name {
	case domain.StepTestData:
		err = os.WriteFile(out, []byte("variant_id,username\nV00001,alice\nV00002,bob\n"), 0o600)
	case domain.StepScripts:
		if err = os.MkdirAll(out, 0o750); err == nil {
			err = os.WriteFile(filepath.Join(out, "V00001.txt"), []byte("step 1"), 0o600)
		}
	case domain.StepCombinatorial:
		err = os.WriteFile(out, []byte("**Coverage Percentage:** 100%\n**Test Cases Generated:** 3\n"), 0o600)
	}
	return steps.ExitOutcome{}, err
}

func (r *artifactRunner) count(name domain.StepName) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

// faultyExecutor wraps an executor and fails it for selected scenarios.
type faultyExecutor struct {
	steps.Executor

	failFor map[string]bool
}

func (e *faultyExecutor) Execute(ctx context.Context, target *steps.Target) (*domain.StepResult, error) {
	if e.failFor[target.Scenario.ID] {
		return nil, fmt.Errorf("%w: forced failure", errors.ErrConfiguration)
	}
	return e.Executor.Execute(ctx, target)
}

func testRegistry(runner steps.Runner) *steps.Registry {
	return steps.NewDefaultRegistry(runner, testCommands(), "tools")
}

func scenariosFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_scenarios.md")
	require.NoError(t, os.WriteFile(path, []byte("# Scenarios\n"), 0o600))
	return path
}

