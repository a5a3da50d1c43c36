package environment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// Probe answers whether the runtime can be invoked.
type Probe interface {
	CheckRuntime(ctx context.Context) (*process.Outcome, error)
}

// Provisioner installs the declared third-party libraries.
type Provisioner interface {
	ManifestExists() (bool, error)
	UpgradePackageManager(ctx context.Context) (*process.Outcome, error)
	InstallManifest(ctx context.Context) (*process.Outcome, error)
}

// Python probes and provisions a Python interpreter through pip.
type Python struct {
	runner   process.Runner
	runtime  string
	manifest string
	workDir  string
	timeout  time.Duration
}

// NewPython builds the probe/provisioner from settings.
func NewPython(runner process.Runner, cfg *config.Config) *Python {
	return &Python{
		runner:   runner,
		runtime:  cfg.Runtime,
		manifest: cfg.Manifest,
		workDir:  cfg.WorkDir,
		timeout:  cfg.CommandTimeout,
	}
}

// CheckRuntime runs the interpreter's version query with output captured.
func (p *Python) CheckRuntime(ctx context.Context) (*process.Outcome, error) {
	return p.runner.Run(ctx, p.command(false, "--version"))
}

// ManifestExists reports whether the manifest file is present.
func (p *Python) ManifestExists() (bool, error) {
	info, err := os.Stat(p.manifestPath())
	if err == nil {
		return !info.IsDir(), nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat manifest: %w", err)
}

// UpgradePackageManager upgrades pip in place, showing its progress on the console.
func (p *Python) UpgradePackageManager(ctx context.Context) (*process.Outcome, error) {
	return p.runner.Run(ctx, p.command(true, "-m", "pip", "install", "--upgrade", "pip"))
}

// InstallManifest installs every requirement listed in the manifest.
// pip skips requirements that are already satisfied, so re-runs succeed.
func (p *Python) InstallManifest(ctx context.Context) (*process.Outcome, error) {
	return p.runner.Run(ctx, p.command(true, "-m", "pip", "install", "-r", p.manifest))
}

// Manifest returns the manifest path as given to the package manager.
func (p *Python) Manifest() string {
	return p.manifestPath()
}

func (p *Python) manifestPath() string {
	cfg := config.Config{WorkDir: p.workDir}

	return cfg.ResolvePath(p.manifest)
}

func (p *Python) command(inherit bool, args ...string) process.Command {
	return process.Command{
		Name:    p.runtime,
		Args:    args,
		Dir:     p.workDir,
		Inherit: inherit,
		Timeout: p.timeout,
	}
}

// RuntimeVersion extracts the version line an interpreter printed.
// Older interpreters print it to stderr.
func RuntimeVersion(outcome *process.Outcome) string {
	if outcome == nil {
		return ""
	}

	version := strings.TrimSpace(string(outcome.Stdout))
	if version == "" {
		version = strings.TrimSpace(string(outcome.Stderr))
	}

	return version
}
