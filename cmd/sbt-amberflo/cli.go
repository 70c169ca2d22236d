// Where: cmd/sbt-amberflo/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/amberflo/sbt-aws-amberflo/internal/commands"
	"github.com/amberflo/sbt-aws-amberflo/internal/config"
)

// buildDependencies constructs the runtime dependencies for the CLI.
// The AWS-facing factories are left nil so commands.Run lazily wires the
// real clients only for commands that need them.
func buildDependencies() commands.Dependencies {
	return commands.Dependencies{
		Out:        os.Stdout,
		LoadConfig: config.Load,
	}
}
