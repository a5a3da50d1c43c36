// Package processtest provides a scripted process.Runner for state machine tests.
package processtest

import (
	"context"
	"sync"

	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// Step is the scripted result of one invocation.
type Step struct {
	// ExitCode is returned in the Outcome.
	ExitCode int
	// Stdout is returned as captured output.
	Stdout string
	// Err is returned as an invocation error.
	Err error
}

// Runner replays Steps in order and records every Command it receives.
// Invocations beyond the script succeed with exit status zero.
type Runner struct {
	mu      sync.Mutex
	steps   []Step
	calls   []process.Command
	nextPID int
}

// NewRunner returns a runner scripted with steps.
func NewRunner(steps ...Step) *Runner {
	return &Runner{
		steps:   steps,
		nextPID: 1000,
	}
}

// Run implements process.Runner.
func (r *Runner) Run(_ context.Context, cmd process.Command) (*process.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, cmd)

	var step Step
	if len(r.steps) > 0 {
		step, r.steps = r.steps[0], r.steps[1:]
	}

	outcome := &process.Outcome{
		ExitCode: step.ExitCode,
		Stdout:   []byte(step.Stdout),
	}

	if step.Err != nil {
		outcome.ExitCode = process.UnknownExitCode
	}

	return outcome, step.Err
}

// Start implements process.Spawner using the same script.
func (r *Runner) Start(ctx context.Context, cmd process.Command) (int, error) {
	if _, err := r.Run(ctx, cmd); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextPID++

	return r.nextPID, nil
}

// Calls returns the commands received so far.
func (r *Runner) Calls() []process.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]process.Command(nil), r.calls...)
}
