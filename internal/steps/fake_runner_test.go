package steps_test

import (
	"context"
	"sync"

	"github.com/mrz1836/qaforge/internal/domain"
	"github.com/mrz1836/qaforge/internal/steps"
)

// fakeRunner returns scripted outcomes per step and records every call.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []fakeCall
	outcomes map[domain.StepName]steps.ExitOutcome
	errs     map[domain.StepName]error
	effects  map[domain.StepName]func(args []string)
}

type fakeCall struct {
	step domain.StepName
	args []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outcomes: make(map[domain.StepName]steps.ExitOutcome),
		errs:     make(map[domain.StepName]error),
		effects:  make(map[domain.StepName]func([]string)),
	}
}

func (f *fakeRunner) RunStep(_ context.Context, name domain.StepName, args []string) (steps.ExitOutcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{step: name, args: args})
	effect := f.effects[name]
	f.mu.Unlock()

	if effect != nil {
		effect(args)
	}
	return f.outcomes[name], f.errs[name]
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
