package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// UnknownExitCode is reported when the process never produced an exit status.
const UnknownExitCode = -1

// ErrTimeout is returned when a command outlives its Command.Timeout.
var ErrTimeout = errors.New("command timed out")

// Command describes a single subprocess invocation.
type Command struct {
	// Name is the executable, looked up on PATH when it has no separator.
	Name string
	// Args are passed after Name.
	Args []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Inherit attaches the child to the runner's console streams instead of capturing output.
	Inherit bool
	// Timeout bounds the wait. Zero waits until the child exits.
	Timeout time.Duration
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	line := c.Name
	for _, arg := range c.Args {
		line += " " + arg
	}

	return line
}

// Outcome is what a finished subprocess left behind.
type Outcome struct {
	// ExitCode is the child's exit status.
	ExitCode int
	// Stdout holds captured standard output. Empty for inherited commands.
	Stdout []byte
	// Stderr holds captured standard error. Empty for inherited commands.
	Stderr []byte
	// Duration is the wall time between start and exit.
	Duration time.Duration
}

// Success reports whether the child exited with status zero.
func (o *Outcome) Success() bool {
	return o != nil && o.ExitCode == 0
}

// Runner runs a command to completion.
// A non-zero exit is an Outcome, not an error; errors mean the command could not run or finish.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// Spawner starts a command without waiting for it.
type Spawner interface {
	Start(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Stdin, Stdout and Stderr are handed to inherited commands.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process console.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the command and blocks until it exits or its timeout elapses.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	runCtx := ctx

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	//nolint:gosec // Commands come from the operator's own settings.
	child := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	child.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer

	if cmd.Inherit {
		child.Stdin = r.Stdin
		child.Stdout = r.Stdout
		child.Stderr = r.Stderr
	} else {
		child.Stdout = &stdout
		child.Stderr = &stderr
	}

	started := time.Now()
	err := child.Run()

	outcome := &Outcome{
		ExitCode: UnknownExitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(started),
	}

	if child.ProcessState != nil {
		outcome.ExitCode = child.ProcessState.ExitCode()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return outcome, fmt.Errorf("%s: %w after %s", cmd, ErrTimeout, cmd.Timeout)
	}

	if err == nil {
		return outcome, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return outcome, nil
	}

	return outcome, fmt.Errorf("run %s: %w", cmd, err)
}

// Start spawns the command detached from the runner and returns its PID.
// The child is reaped in the background, so once it exits it leaves the
// process table instead of lingering as a zombie. It keeps running after
// this process exits.
func (r *ExecRunner) Start(_ context.Context, cmd Command) (int, error) {
	// No context: the child must outlive the launcher.
	//nolint:gosec,noctx // Commands come from the operator's own settings.
	child := exec.Command(cmd.Name, cmd.Args...)
	child.Dir = cmd.Dir
	detach(child)

	if err := child.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cmd, err)
	}

	go func() {
		_ = child.Wait()
	}()

	return child.Process.Pid, nil
}
