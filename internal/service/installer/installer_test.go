package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/console"
	"github.com/oshokin/monitor-bootstrap/internal/service/environment"
	"github.com/oshokin/monitor-bootstrap/internal/service/process/processtest"
)

// newFixture writes a settings file with a manifest and returns its path.
func newFixture(t *testing.T, withManifest bool) string {
	t.Helper()

	dir := t.TempDir()
	if withManifest {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultManifest), []byte("psutil>=5.9\n"), 0o600))
	}

	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{WorkDir: dir}))

	return path
}

// run executes the installer with a scripted runner and returns its output and error.
func run(t *testing.T, configPath string, runner *processtest.Runner) (string, error) {
	t.Helper()

	var out bytes.Buffer

	err := Run(context.Background(), &Options{
		ConfigPath: configPath,
		Runner:     runner,
		Console:    console.New(strings.NewReader("\n"), &out),
	})

	return out.String(), err
}

// TestInstall_RuntimeMissing aborts with status 1 and never provisions.
func TestInstall_RuntimeMissing(t *testing.T) {
	t.Parallel()

	cases := map[string]processtest.Step{
		"non-zero exit":    {ExitCode: 9009},
		"invocation error": {Err: errors.New("executable file not found in $PATH")},
	}

	for name, step := range cases {
		name, step := name, step
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			runner := processtest.NewRunner(step)

			out, err := run(t, newFixture(t, true), runner)
			require.ErrorIs(t, err, bootstrap.ErrRuntimeMissing)
			require.Equal(t, bootstrap.ExitFailure, bootstrap.ExitCode(err))
			require.Len(t, runner.Calls(), 1)
			require.Contains(t, out, config.DefaultRuntimeDownloadURL)
			require.Contains(t, out, console.AcknowledgePrompt)
			require.NotContains(t, out, "Installing dependencies")
		})
	}
}

// TestInstall_DependencyInstallFailed aborts with status 1 after the runtime check passed.
func TestInstall_DependencyInstallFailed(t *testing.T) {
	t.Parallel()

	runner := processtest.NewRunner(
		processtest.Step{Stdout: "Python 3.12.1"},
		processtest.Step{},
		processtest.Step{ExitCode: 1},
	)

	out, err := run(t, newFixture(t, true), runner)
	require.ErrorIs(t, err, bootstrap.ErrDependencyInstallFailed)
	require.NotErrorIs(t, err, bootstrap.ErrRuntimeMissing)
	require.Equal(t, bootstrap.ExitFailure, bootstrap.ExitCode(err))
	require.Len(t, runner.Calls(), 3)
	require.Contains(t, out, "Runtime found: Python 3.12.1")
	require.Contains(t, out, "Check your network connection")
	require.NotContains(t, out, "Next steps")
}

// TestInstall_UpgradeFailureTolerated lets the manifest install decide the step.
func TestInstall_UpgradeFailureTolerated(t *testing.T) {
	t.Parallel()

	runner := processtest.NewRunner(
		processtest.Step{Stdout: "Python 3.12.1"},
		processtest.Step{ExitCode: 1},
		processtest.Step{},
	)

	_, err := run(t, newFixture(t, true), runner)
	require.NoError(t, err)
	require.Len(t, runner.Calls(), 3)
}

// TestInstall_ManifestMissing fails the install step without calling the package manager.
func TestInstall_ManifestMissing(t *testing.T) {
	t.Parallel()

	runner := processtest.NewRunner(processtest.Step{Stdout: "Python 3.12.1"})

	out, err := run(t, newFixture(t, false), runner)
	require.ErrorIs(t, err, bootstrap.ErrDependencyInstallFailed)
	require.Len(t, runner.Calls(), 1)
	require.Contains(t, out, "Dependency manifest not found")

	headline := strings.Index(out, "[ERROR] Dependency installation failed.")
	hint := strings.Index(out, "Dependency manifest not found")
	generic := strings.Index(out, "Check your network connection")
	require.GreaterOrEqual(t, headline, 0)
	require.Greater(t, hint, headline)
	require.Greater(t, generic, hint)
}

// TestInstall_LogsStageTransitions scopes each step's log entries to its stage.
func TestInstall_LogsStageTransitions(t *testing.T) {
	t.Parallel()

	var logs, out bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.New(zapcore.DebugLevel, &logs))

	runner := processtest.NewRunner(
		processtest.Step{Stdout: "Python 3.12.1"},
		processtest.Step{},
		processtest.Step{ExitCode: 1},
	)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultManifest), []byte("psutil>=5.9\n"), 0o600))

	python := environment.NewPython(runner, &config.Config{Runtime: "python", Manifest: config.DefaultManifest, WorkDir: dir})

	inst := New(python, python, console.New(strings.NewReader("\n"), &out))
	inst.Runtime = "python"

	require.ErrorIs(t, inst.Install(ctx), bootstrap.ErrDependencyInstallFailed)

	entries := logs.String()
	require.Contains(t, entries, "Bootstrap started")
	require.Contains(t, entries, `"stage": "start"`)
	require.Contains(t, entries, `"stage": "runtime-check"`)
	require.Contains(t, entries, `"stage": "dependency-install"`)
	require.Contains(t, entries, "Bootstrap aborted")
	require.Contains(t, entries, `"next_stage": "abort"`)
	require.NotContains(t, entries, "Bootstrap finished")
}

// TestInstall_Success exits 0 and suggests both next steps; a re-run behaves the same.
func TestInstall_Success(t *testing.T) {
	t.Parallel()

	configPath := newFixture(t, true)

	for i := 0; i < 2; i++ {
		runner := processtest.NewRunner(processtest.Step{Stdout: "Python 3.12.1"})

		out, err := run(t, configPath, runner)
		require.NoError(t, err)
		require.Equal(t, bootstrap.ExitSuccess, bootstrap.ExitCode(err))
		require.Len(t, runner.Calls(), 3)
		require.Contains(t, out, "All dependencies installed.")
		require.Contains(t, out, "monitor-launcher")
		require.Contains(t, out, AutostartScript)
		require.Contains(t, out, console.AcknowledgePrompt)
	}
}

// TestRun_BadConfig surfaces configuration errors before any subprocess runs.
func TestRun_BadConfig(t *testing.T) {
	t.Parallel()

	runner := processtest.NewRunner()

	_, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), runner)
	require.Error(t, err)
	require.Empty(t, runner.Calls())
}
