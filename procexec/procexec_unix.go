//go:build !windows

package procexec

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

// setProcessGroup places cmd in its own process group (Setpgid) so that
// killing the group kills every descendant the shell may have spawned,
// and makes cancellation of cmd's context kill that whole group.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error { return Kill(cmd) }
}

// Kill sends SIGKILL to cmd's entire process group, catching any
// descendant make/cc invocation spawned by the shell.
func Kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	pgid, err := unix.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}

	return unix.Kill(-pgid, unix.SIGKILL)
}
