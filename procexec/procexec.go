// Package procexec runs shell hooks and make invocations in their own
// process group, so a driver-level error aborts the whole subtree of
// child processes instead of leaking orphans. Process-group isolation
// uses golang.org/x/sys for the low-level process control the standard
// library's os/exec doesn't expose.
package procexec

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/go-clib/clib/internal/dcontext"
)

// Shell runs command via "sh -c" in dir, with extraEnv appended to the
// process's inherited environment. A non-zero exit is reported as an
// error, fatal to whichever package hook invoked it.
func Shell(ctx dcontext.Context, dir, command string, extraEnv []string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), extraEnv...)
	setProcessGroup(cmd)

	out, err := cmd.CombinedOutput()
	if err != nil {
		dcontext.GetLogger(ctx).Debugf("procexec: %q failed in %s: %s", command, dir, out)
		return fmt.Errorf("procexec: %q exited with error: %w", command, err)
	}

	return nil
}

// MakeCommand runs "make <args...>" with extraEnv appended to the
// inherited environment, in its own process group. Used by the build
// driver for both its dry-run probe and the real invocation.
func MakeCommand(ctx dcontext.Context, dir string, args, extraEnv []string) error {
	cmd := exec.CommandContext(ctx, "make", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), extraEnv...)
	setProcessGroup(cmd)

	out, err := cmd.CombinedOutput()
	if err != nil {
		dcontext.GetLogger(ctx).Debugf("procexec: make %v failed in %s: %s", args, dir, out)
		return fmt.Errorf("procexec: make %v exited with error: %w", args, err)
	}

	return nil
}
