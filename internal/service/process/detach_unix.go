//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

func detach(child *exec.Cmd) {
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
