package launcher

import (
	"context"
	"fmt"

	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/console"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// CandidateCauses lists why the application may fail to start, in the order shown to the operator.
//
//nolint:gochecknoglobals // Fixed diagnostic text shared with tests.
var CandidateCauses = []string{
	"The runtime is not installed or not on PATH: run monitor-installer.",
	"Dependencies are not installed: run monitor-installer.",
	"Insufficient permission: run the launcher as administrator.",
}

// Launcher runs the monitoring application in the foreground.
type Launcher struct {
	runner  process.Runner
	console *console.Console
	command process.Command
}

// New returns a launcher for the given application command.
func New(runner process.Runner, con *console.Console, cmd process.Command) *Launcher {
	cmd.Inherit = true

	return &Launcher{
		runner:  runner,
		console: con,
		command: cmd,
	}
}

// Launch blocks while the application runs, then diagnoses a non-zero exit.
// The returned error wraps bootstrap.ErrApplicationLaunchFailed.
func (l *Launcher) Launch(ctx context.Context) error {
	logger.InfoKV(ctx, "Launcher started", "stage", bootstrap.StageStart)
	logger.InfoKV(ctx, "Starting application", "stage", bootstrap.StageLaunch, "command", l.command.String())

	outcome, err := l.runner.Run(ctx, l.command)
	if err == nil && !outcome.Success() {
		err = fmt.Errorf("exited with status %d", outcome.ExitCode)
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", bootstrap.ErrApplicationLaunchFailed, err)
		logger.ErrorKV(ctx, "Application failed", "stage", bootstrap.StageDiagnose, "error", err)

		l.console.Failure("The monitor failed to start.")
		l.console.List("Possible causes:", CandidateCauses...)
		l.acknowledge(ctx)

		logger.InfoKV(ctx, "Launcher aborted", "stage", bootstrap.StageAbort)

		return err
	}

	logger.InfoKV(ctx, "Application exited", "stage", bootstrap.StageIdle, "duration", outcome.Duration.String())

	l.acknowledge(ctx)

	return nil
}

func (l *Launcher) acknowledge(ctx context.Context) {
	if err := l.console.Acknowledge(); err != nil {
		logger.WarnKV(ctx, "Acknowledgment failed", "error", err)
	}
}
