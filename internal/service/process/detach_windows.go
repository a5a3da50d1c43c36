//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// createNoWindow keeps the console host from opening a window for the child.
const createNoWindow = 0x08000000

func detach(child *exec.Cmd) {
	child.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
}
