//go:build windows

package procexec

import "os/exec"

// setProcessGroup is a no-op on Windows, which lacks POSIX process
// groups; a killed build may leave orphaned child processes there.
func setProcessGroup(cmd *exec.Cmd) {}

// Kill terminates cmd's direct child process only.
func Kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	return cmd.Process.Kill()
}
