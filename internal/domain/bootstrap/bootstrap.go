package bootstrap

import (
	"errors"
	"time"
)

// Exit statuses returned by both binaries.
const (
	// ExitSuccess means every step passed.
	ExitSuccess = 0
	// ExitFailure means the sequence aborted on a diagnosed failure.
	ExitFailure = 1
)

var (
	// ErrRuntimeMissing means the runtime version query failed.
	ErrRuntimeMissing = errors.New("runtime is not installed or not on PATH")
	// ErrDependencyInstallFailed means the manifest-driven install failed.
	ErrDependencyInstallFailed = errors.New("dependency installation failed")
	// ErrApplicationLaunchFailed means the monitoring application exited non-zero.
	ErrApplicationLaunchFailed = errors.New("application launch failed")
)

// Stage names a state of the bootstrap state machines.
type Stage string

// Installer and launcher stages.
const (
	StageStart             Stage = "start"
	StageRuntimeCheck      Stage = "runtime-check"
	StageDependencyInstall Stage = "dependency-install"
	StageLaunch            Stage = "launch"
	StageDiagnose          Stage = "diagnose"
	StageIdle              Stage = "idle"
	StageSuccess           Stage = "success"
	StageAbort             Stage = "abort"
)

// ExitCode maps a bootstrap result to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	return ExitFailure
}

// IsDiagnosed reports whether err belongs to the taxonomy already explained to the operator.
func IsDiagnosed(err error) bool {
	return errors.Is(err, ErrRuntimeMissing) ||
		errors.Is(err, ErrDependencyInstallFailed) ||
		errors.Is(err, ErrApplicationLaunchFailed)
}

// Actor identifies who started a launch.
type Actor struct {
	// Hostname is the machine name where the launch happened.
	Hostname string `json:"hostname"`
	// Username is the system user who started the launch.
	Username string `json:"username"`
}

// LaunchRecord describes the last detached start of the monitoring application.
type LaunchRecord struct {
	// PID is the process identifier of the started application.
	PID int `json:"pid"`
	// Runtime is the interpreter used to start it.
	Runtime string `json:"runtime"`
	// EntryPoint is the script that was started.
	EntryPoint string `json:"entry_point"`
	// StartedAt is when the process was spawned.
	StartedAt time.Time `json:"started_at"`
	// Actor is who started it.
	Actor *Actor `json:"actor,omitempty"`
}
