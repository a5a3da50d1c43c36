package environment

import (
	"fmt"

	"github.com/mitchellh/go-ps"
)

// ProcessTable looks up running processes.
type ProcessTable interface {
	Alive(pid int) (bool, error)
}

// SystemProcessTable reads the operating system process table.
type SystemProcessTable struct{}

// Alive reports whether a process with the PID is listed.
func (SystemProcessTable) Alive(pid int) (bool, error) {
	proc, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	return proc != nil, nil
}
