package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/console"
	"github.com/oshokin/monitor-bootstrap/internal/service/environment"
	"github.com/oshokin/monitor-bootstrap/internal/service/process"
)

// AutostartScript is the collaborator suggested as the alternative next step.
const AutostartScript = "setup_autostart.py"

// errManifestMissing marks a dependency install that failed before the package manager ran.
var errManifestMissing = errors.New("manifest not found")

// Installer verifies the runtime and provisions the manifest's dependencies.
type Installer struct {
	probe       environment.Probe
	provisioner environment.Provisioner
	console     *console.Console

	// Runtime and DownloadURL feed the operator diagnostics.
	Runtime     string
	DownloadURL string
	// Manifest is the path shown in remediation hints.
	Manifest string
}

// New wires an installer from its collaborators.
func New(probe environment.Probe, provisioner environment.Provisioner, con *console.Console) *Installer {
	return &Installer{
		probe:       probe,
		provisioner: provisioner,
		console:     con,
	}
}

// Install runs RuntimeCheck then DependencyInstall and stops at the first failure.
// The returned error wraps bootstrap.ErrRuntimeMissing or bootstrap.ErrDependencyInstallFailed.
func (i *Installer) Install(ctx context.Context) error {
	logger.InfoKV(ctx, "Bootstrap started", "stage", bootstrap.StageStart)

	i.console.Printf("Checking the %s runtime...", i.Runtime)

	checkCtx := logger.WithKV(ctx, "stage", bootstrap.StageRuntimeCheck)

	version, err := i.checkRuntime(checkCtx)
	if err != nil {
		i.console.Failure("%s was not found or could not be started.", i.Runtime)
		i.console.Printf("Install it from %s and make sure it is on PATH, then run the installer again.", i.DownloadURL)

		return i.abort(checkCtx, err)
	}

	i.console.Success("Runtime found: %s", version)
	i.console.Printf("Installing dependencies...")

	installCtx := logger.WithKV(ctx, "stage", bootstrap.StageDependencyInstall)

	if err = i.installDependencies(installCtx); err != nil {
		i.console.Failure("Dependency installation failed.")

		if errors.Is(err, errManifestMissing) {
			i.console.Printf("Dependency manifest not found at %s.", i.Manifest)
		}

		i.console.Printf("Check your network connection, or install them manually: %s -m pip install -r %s",
			i.Runtime, i.Manifest)

		return i.abort(installCtx, err)
	}

	logger.InfoKV(ctx, "Bootstrap finished", "stage", bootstrap.StageSuccess)

	i.console.Success("All dependencies installed.")
	i.console.List("Next steps:",
		"Start the monitor: run monitor-launcher",
		fmt.Sprintf("Start it on boot: %s %s", i.Runtime, AutostartScript),
	)

	i.acknowledge(ctx)

	return nil
}

// checkRuntime returns the reported version or an error wrapping ErrRuntimeMissing.
func (i *Installer) checkRuntime(ctx context.Context) (string, error) {
	outcome, err := i.probe.CheckRuntime(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", bootstrap.ErrRuntimeMissing, err)
	}

	if !outcome.Success() {
		return "", fmt.Errorf("%w: version query exited with status %d", bootstrap.ErrRuntimeMissing, outcome.ExitCode)
	}

	version := environment.RuntimeVersion(outcome)
	logger.InfoKV(ctx, "Runtime found", "version", version)

	return version, nil
}

// installDependencies upgrades the package manager then installs the manifest.
// A failed upgrade is tolerated: the manifest install decides the step.
func (i *Installer) installDependencies(ctx context.Context) error {
	exists, err := i.provisioner.ManifestExists()
	if err != nil {
		return fmt.Errorf("%w: %w", bootstrap.ErrDependencyInstallFailed, err)
	}

	if !exists {
		return fmt.Errorf("%w: %w: %s", bootstrap.ErrDependencyInstallFailed, errManifestMissing, i.Manifest)
	}

	outcome, err := i.provisioner.UpgradePackageManager(ctx)
	if err = checkOutcome(outcome, err); err != nil {
		logger.WarnKV(ctx, "Package manager upgrade failed, continuing", "error", err)
	}

	outcome, err = i.provisioner.InstallManifest(ctx)
	if err = checkOutcome(outcome, err); err != nil {
		return fmt.Errorf("%w: %w", bootstrap.ErrDependencyInstallFailed, err)
	}

	return nil
}

// abort logs the transition to Abort from the stage scoped in ctx,
// waits for the operator and returns err unchanged.
func (i *Installer) abort(ctx context.Context, err error) error {
	logger.ErrorKV(ctx, "Bootstrap aborted", "next_stage", bootstrap.StageAbort, "error", err)

	i.acknowledge(ctx)

	return err
}

func (i *Installer) acknowledge(ctx context.Context) {
	if err := i.console.Acknowledge(); err != nil {
		logger.WarnKV(ctx, "Acknowledgment failed", "error", err)
	}
}

// checkOutcome folds an invocation error and a non-zero exit into one error.
func checkOutcome(outcome *process.Outcome, err error) error {
	if err != nil {
		return err
	}

	if !outcome.Success() {
		return fmt.Errorf("exited with status %d", outcome.ExitCode)
	}

	return nil
}
