package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/repository/launch"
	"github.com/oshokin/monitor-bootstrap/internal/service/environment"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

const (
	// SuccessLogFilename collects detached starts.
	SuccessLogFilename = "silent_launcher.log"
	// ErrorLogFilename collects detached start failures.
	ErrorLogFilename = "silent_launcher_error.log"
)

var (
	// ErrEntryPointMissing is returned when the application script does not exist.
	ErrEntryPointMissing = errors.New("entry point not found")
	// ErrExitedImmediately is returned when the started PID is gone from the process table.
	ErrExitedImmediately = errors.New("application exited right after start")
)

// Detached starts the application without a console and records the launch.
type Detached struct {
	Spawner   process.Spawner
	Processes environment.ProcessTable
	Records   launch.Repository
	// LookPath resolves an interpreter name; exec.LookPath by default.
	LookPath func(file string) (string, error)
	// Now returns the launch time; time.Now by default.
	Now func() time.Time
	// Grace is how long the child must stay alive before it counts as started.
	Grace time.Duration

	cfg *config.Config
}

// NewDetached wires a detached launcher from settings with real collaborators.
func NewDetached(cfg *config.Config) *Detached {
	return &Detached{
		Spawner:   process.NewExecRunner(),
		Processes: environment.SystemProcessTable{},
		Records:   launch.NewFileRepository(cfg.ResolvePath(cfg.LaunchRecord)),
		LookPath:  exec.LookPath,
		Now:       time.Now,
		Grace:     cfg.LivenessGrace,
		cfg:       cfg,
	}
}

// Start spawns the application and writes the outcome to the launcher log files.
func (d *Detached) Start(ctx context.Context) error {
	record, err := d.start(ctx)
	if err != nil {
		d.appendLog(ctx, ErrorLogFilename, zapcore.ErrorLevel, "Launch failed", zap.Error(err))

		return err
	}

	d.appendLog(ctx, SuccessLogFilename, zapcore.InfoLevel, "Application started",
		zap.Int("pid", record.PID), zap.String("runtime", record.Runtime))

	if err = d.Records.Save(ctx, record); err != nil {
		return fmt.Errorf("save launch record: %w", err)
	}

	return nil
}

func (d *Detached) start(ctx context.Context) (*bootstrap.LaunchRecord, error) {
	entryPoint := d.cfg.ResolvePath(d.cfg.EntryPoint)
	if _, err := os.Stat(entryPoint); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryPointMissing, entryPoint)
	}

	runtime := d.interpreter()

	pid, err := d.Spawner.Start(ctx, process.Command{
		Name: runtime,
		Args: []string{d.cfg.EntryPoint},
		Dir:  d.cfg.WorkDir,
	})
	if err != nil {
		return nil, err
	}

	startedAt := d.Now()

	if err = sleep(ctx, d.Grace); err != nil {
		return nil, err
	}

	alive, err := d.Processes.Alive(pid)
	if err != nil {
		return nil, err
	}

	if !alive {
		return nil, fmt.Errorf("%w: pid %d gone within %s", ErrExitedImmediately, pid, d.Grace)
	}

	actor, err := detectActor()
	if err != nil {
		logger.WarnKV(ctx, "Actor detection failed", "error", err)
	}

	logger.InfoKV(ctx, "Application started in background", "pid", pid, "runtime", runtime)

	return &bootstrap.LaunchRecord{
		PID:        pid,
		Runtime:    runtime,
		EntryPoint: d.cfg.EntryPoint,
		StartedAt:  startedAt,
		Actor:      actor,
	}, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// detectActor gathers host and user information for the launch record.
func detectActor() (*bootstrap.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	current, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &bootstrap.Actor{Hostname: hostname, Username: current.Username}, nil
}

// interpreter prefers the windowless runtime and falls back to the regular one.
func (d *Detached) interpreter() string {
	if d.cfg.WindowlessRuntime != "" {
		if _, err := d.LookPath(d.cfg.WindowlessRuntime); err == nil {
			return d.cfg.WindowlessRuntime
		}
	}

	return d.cfg.Runtime
}

// appendLog writes one entry to a file in the log directory.
// Failures only reach the process logger: there is no console to report to.
func (d *Detached) appendLog(ctx context.Context, name string, level zapcore.Level, msg string, fields ...zap.Field) {
	dir := d.cfg.ResolvePath(d.cfg.LogDir)
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		logger.ErrorKV(ctx, "Create log directory failed", "error", err)
		return
	}

	path := filepath.Join(dir, name)

	//nolint:gosec // Path is built from the operator's settings.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		logger.ErrorKV(ctx, "Open log file failed", "path", path, "error", err)
		return
	}

	defer func() {
		_ = file.Close()
	}()

	fileLogger := logger.NewPlain(zapcore.DebugLevel, file)
	if ce := fileLogger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}

	_ = fileLogger.Sync()
}
