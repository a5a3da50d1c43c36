package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/repository/launch"
	"github.com/oshokin/monitor-bootstrap/internal/service/process/processtest"
)

// stubTable reports every PID as alive or dead.
type stubTable struct {
	alive bool
}

func (s stubTable) Alive(int) (bool, error) {
	return s.alive, nil
}

// newDetached builds a detached launcher in a temp work dir.
func newDetached(t *testing.T, withEntryPoint, alive, windowless bool) (*Detached, *processtest.Runner, string) {
	t.Helper()

	dir := t.TempDir()
	if withEntryPoint {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultEntryPoint), []byte("print('hi')\n"), 0o600))
	}

	cfg := config.Default()
	cfg.WorkDir = dir

	runner := processtest.NewRunner()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	d := NewDetached(cfg)
	d.Spawner = runner
	d.Processes = stubTable{alive: alive}
	d.Now = func() time.Time { return now }
	d.Grace = 0
	d.LookPath = func(file string) (string, error) {
		if windowless && file == config.DefaultWindowlessRuntime {
			return "/usr/bin/" + file, nil
		}

		return "", errors.New("not found")
	}

	return d, runner, dir
}

// TestDetached_Start records the launch and logs success.
func TestDetached_Start(t *testing.T) {
	t.Parallel()

	d, runner, dir := newDetached(t, true, true, true)

	require.NoError(t, d.Start(context.Background()))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "pythonw main.py", calls[0].String())
	require.Equal(t, dir, calls[0].Dir)

	record, err := launch.NewFileRepository(filepath.Join(dir, config.DefaultLaunchRecordFilename)).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1001, record.PID)
	require.Equal(t, "pythonw", record.Runtime)

	contents, err := os.ReadFile(filepath.Join(dir, config.DefaultLogDir, SuccessLogFilename))
	require.NoError(t, err)
	require.Contains(t, string(contents), "Application started")
	require.Contains(t, string(contents), "1001")
}

// TestDetached_FallsBackToRuntime uses the console runtime when the windowless one is absent.
func TestDetached_FallsBackToRuntime(t *testing.T) {
	t.Parallel()

	d, runner, _ := newDetached(t, true, true, false)

	require.NoError(t, d.Start(context.Background()))
	require.Equal(t, "python main.py", runner.Calls()[0].String())
}

// TestDetached_EntryPointMissing logs to the error file and spawns nothing.
func TestDetached_EntryPointMissing(t *testing.T) {
	t.Parallel()

	d, runner, dir := newDetached(t, false, true, true)

	require.ErrorIs(t, d.Start(context.Background()), ErrEntryPointMissing)
	require.Empty(t, runner.Calls())

	contents, err := os.ReadFile(filepath.Join(dir, config.DefaultLogDir, ErrorLogFilename))
	require.NoError(t, err)
	require.Contains(t, string(contents), "entry point not found")
}

// TestDetached_ExitedImmediately fails when the PID is gone and records nothing.
func TestDetached_ExitedImmediately(t *testing.T) {
	t.Parallel()

	d, _, dir := newDetached(t, true, false, true)

	require.ErrorIs(t, d.Start(context.Background()), ErrExitedImmediately)

	_, err := os.Stat(filepath.Join(dir, config.DefaultLaunchRecordFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// realDetached builds a detached launcher with the real spawner and process
// table that runs `<runtime> <entryPoint>` in a temp work dir.
func realDetached(t *testing.T, runtimeName, entryPoint string) (*Detached, string) {
	t.Helper()

	if goruntime.GOOS == "windows" {
		t.Skip("uses POSIX utilities as the runtime")
	}

	if _, err := exec.LookPath(runtimeName); err != nil {
		t.Skipf("%s not available: %v", runtimeName, err)
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, entryPoint), nil, 0o600))

	cfg := config.Default()
	cfg.WorkDir = dir
	cfg.Runtime = runtimeName
	cfg.WindowlessRuntime = ""
	cfg.EntryPoint = entryPoint
	cfg.LivenessGrace = 500 * time.Millisecond

	return NewDetached(cfg), dir
}

// TestDetached_RealChildExitsAtOnce reports a child that dies inside the grace period.
func TestDetached_RealChildExitsAtOnce(t *testing.T) {
	t.Parallel()

	// `false main.py` exits with status 1 straight away.
	d, dir := realDetached(t, "false", config.DefaultEntryPoint)

	require.ErrorIs(t, d.Start(context.Background()), ErrExitedImmediately)

	_, err := os.Stat(filepath.Join(dir, config.DefaultLaunchRecordFilename))
	require.ErrorIs(t, err, os.ErrNotExist)

	contents, err := os.ReadFile(filepath.Join(dir, config.DefaultLogDir, ErrorLogFilename))
	require.NoError(t, err)
	require.Contains(t, string(contents), "application exited right after start")
}

// TestDetached_RealChildSurvives records a child still running after the grace period.
func TestDetached_RealChildSurvives(t *testing.T) {
	t.Parallel()

	// `sleep 30`: the entry point file is named after the argument sleep expects.
	d, dir := realDetached(t, "sleep", "30")

	require.NoError(t, d.Start(context.Background()))

	record, err := launch.NewFileRepository(filepath.Join(dir, config.DefaultLaunchRecordFilename)).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sleep", record.Runtime)

	proc, err := os.FindProcess(record.PID)
	require.NoError(t, err)
	require.NoError(t, proc.Kill())
}

// TestDetectActor ensures hostname and username are detected and non-empty.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := detectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}
