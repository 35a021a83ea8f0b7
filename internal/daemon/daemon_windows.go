//go:build windows
// +build windows

package daemon

import (
	"os/exec"
	"syscall"
)

// setProcAttr detaches the child into its own process group so it
// survives the parent exiting.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
