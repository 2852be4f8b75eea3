// Command clib is the CLI entry point realizing the install/update/
// upgrade/build/configure/search surface. It is a thin shell: every
// operation it exposes delegates immediately into resolver,
// builddriver, registryinfra, or repoinfra, and carries no core logic
// of its own.
package main

import "os"

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
