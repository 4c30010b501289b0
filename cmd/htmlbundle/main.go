// Package main is the entry point for the htmlbundle CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/htmlbundle/internal/cli"
	"github.com/yaklabco/htmlbundle/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}

	// The report already describes a failed build.
	if !errors.Is(err, cli.ErrBuildFailed) {
		logging.Default().Error("command failed", logging.FieldError, err)
	}
	return cli.ExitCode(err)
}
