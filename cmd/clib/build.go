package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-clib/clib/builddriver"
	"github.com/go-clib/clib/internal/dcontext"
)

var (
	flagClean bool
	flagTest  bool
	flagWatch bool
)

var buildCmd = &cobra.Command{
	Use:   "build [dir...]",
	Short: "build every installed package under dir (default: deps)",
	RunE:  runBuild,
}

var configureCmd = &cobra.Command{
	Use:   "configure [dir...]",
	Short: "run the configure target over every installed package under dir (default: deps)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return buildDirs(cmd, args, builddriver.TargetConfigure)
	},
}

func runBuild(cmd *cobra.Command, args []string) error {
	target := builddriver.TargetBuild

	switch {
	case flagClean:
		target = builddriver.TargetClean
	case flagTest:
		target = builddriver.TargetTest
	}

	return buildDirs(cmd, args, target)
}

func buildDirs(cmd *cobra.Command, args []string, target builddriver.Target) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = []string{depsDirName}
	}

	ctx := dcontext.Background()
	d := builddriver.New(builddriver.WithConcurrency(flagConcurrency), builddriver.WithForce(flagForce), builddriver.WithPrefix(flagPrefix))

	for _, dir := range dirs {
		if flagWatch {
			if err := d.Watch(ctx, dir, target); err != nil {
				return err
			}

			continue
		}

		results, err := d.Build(ctx, dir, target)
		if err != nil {
			return err
		}

		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%s: FAILED: %v\n", r.Name, r.Err)
			} else if r.Skipped {
				fmt.Printf("%s: skipped\n", r.Name)
			} else {
				fmt.Printf("%s: ok\n", r.Name)
			}
		}
	}

	return nil
}

func init() {
	buildCmd.Flags().BoolVar(&flagClean, "clean", false, "run the clean target before building")
	buildCmd.Flags().BoolVar(&flagTest, "test", false, "run the test target instead of building")
	buildCmd.Flags().BoolVar(&flagWatch, "watch", false, "rebuild automatically on every filesystem change under dir")
}
