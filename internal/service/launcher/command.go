package launcher

import (
	"context"
	"fmt"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/console"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// Options controls the launcher run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Runner executes the application. Nil means the real console-attached runner.
	Runner process.Runner
	// Console is the operator channel. Nil means stdin/stdout.
	Console *console.Console
}

// Run loads settings and runs the application in the foreground.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "monitor-launcher")

	cfg, err := load(opts.ConfigPath)
	if err != nil {
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

	return New(runner, con, ApplicationCommand(cfg)).Launch(ctx)
}

// RunDetached loads settings and starts the application in the background.
func RunDetached(ctx context.Context, configPath string) error {
	ctx = logger.WithName(ctx, "monitor-launcher.silent")

	cfg, err := load(configPath)
	if err != nil {
		return err
	}

	return NewDetached(cfg).Start(ctx)
}

// ApplicationCommand is the foreground command line of the monitoring application.
// It has no timeout: the application is expected to run until the operator stops it.
func ApplicationCommand(cfg *config.Config) process.Command {
	return process.Command{
		Name: cfg.Runtime,
		Args: []string{cfg.EntryPoint},
		Dir:  cfg.WorkDir,
	}
}

func load(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}
