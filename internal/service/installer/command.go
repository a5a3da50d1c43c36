package installer

import (
	"context"
	"fmt"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/console"
	"github.com/oshokin/monitor-bootstrap/internal/service/environment"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// Options controls the installer run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Runner executes subprocesses. Nil means the real console-attached runner.
	Runner process.Runner
	// Console is the operator channel. Nil means stdin/stdout.
	Console *console.Console
}

// Run loads settings and runs the installer against the real environment.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "monitor-installer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	con := opts.Console
	if con == nil {
		con = console.Std()
	}

	python := environment.NewPython(runner, cfg)

	inst := New(python, python, con)
	inst.Runtime = cfg.Runtime
	inst.DownloadURL = cfg.RuntimeDownloadURL
	inst.Manifest = python.Manifest()

	logger.DebugKV(ctx, "Installer configured",
		"runtime", cfg.Runtime, "manifest", inst.Manifest, "timeout", cfg.CommandTimeout.String())

	return inst.Install(ctx)
}
