// Package steps provides the executors of the per-scenario pipeline.
//
// The variants step runs in-process. The test-data, scripts and
// combinatorial steps check their preconditions and then hand off to an
// external collaborator through the Runner interface. The Registry maps
// step names to executors.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/artifact, internal/variant, internal/ctxutil, internal/logging
//   - MUST NOT import: internal/orchestrator, internal/cli
package steps

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mrz1836/qaforge/internal/artifact"
	"github.com/mrz1836/qaforge/internal/domain"
	qaerrors "github.com/mrz1836/qaforge/internal/errors"
)

// Executor runs one pipeline step for one scenario.
//
// Execute returns a StepResult in every case where the step was attempted.
// A non-nil error means the step failed; the result then carries status
// failed and the error text.
type Executor interface {
	// Name returns the step this executor handles.
	Name() domain.StepName

	// Execute runs the step for target.
	Execute(ctx context.Context, target *Target) (*domain.StepResult, error)
}

// Target is everything a step needs to know about the scenario it runs for.
type Target struct {
	Root     string
	Scenario domain.ScenarioDefinition
	Global   domain.Axes
	Paths    artifact.Paths

	// ScenariosFile is the scenario-description source the scripts
	// collaborator renders from. Empty means not supplied.
	ScenariosFile string
}

// NewTarget builds the target of def under root.
func NewTarget(root string, def domain.ScenarioDefinition, global domain.Axes, scenariosFile string) *Target {
	return &Target{
		Root:          root,
		Scenario:      def,
		Global:        global,
		Paths:         artifact.PathsFor(root, def),
		ScenariosFile: scenariosFile,
	}
}

// Registry maps step names to their executors.
// It is safe for concurrent read access after initialization.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.StepName]Executor
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[domain.StepName]Executor)}
}

// Register adds an executor, replacing any executor for the same step.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Name()] = e
}

// Get returns the executor for a step, or ErrUnknownStep.
func (r *Registry) Get(name domain.StepName) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", qaerrors.ErrUnknownStep, name)
	}
	return e, nil
}

// Has reports whether an executor is registered for the step.
func (r *Registry) Has(name domain.StepName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[name]
	return ok
}

// Names returns the registered steps in pipeline order.
func (r *Registry) Names() []domain.StepName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.StepName, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Rank() < names[j].Rank() })
	return names
}

// NewDefaultRegistry registers the four pipeline executors.
func NewDefaultRegistry(runner Runner, commands Commands, toolsDir string) *Registry {
	r := NewRegistry()
	r.Register(NewVariantsExecutor())
	r.Register(NewTestDataExecutor(runner, commands, toolsDir))
	r.Register(NewScriptsExecutor(runner, commands, toolsDir))
	r.Register(NewCombinatorialExecutor(runner, commands, toolsDir))
	return r
}
