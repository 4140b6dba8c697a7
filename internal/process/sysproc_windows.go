//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// configure keeps cmd.exe and powershell from flashing a console window.
func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
