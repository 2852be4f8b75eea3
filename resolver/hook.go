package resolver

import (
	"github.com/go-clib/clib/internal/dcontext"
	"github.com/go-clib/clib/procexec"
)

func defaultRunHook(ctx dcontext.Context, dir, command string, env []string) error {
	return procexec.Shell(ctx, dir, command, env)
}
