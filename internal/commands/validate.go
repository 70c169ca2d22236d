// Where: internal/commands/validate.go
// What: validate and version commands.
// Why: Config checking and build identification without AWS access.
package commands

import (
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
	"github.com/amberflo/sbt-aws-amberflo/internal/version"
)

func runValidate(cli CLI, deps Dependencies) int {
	console := ui.New(deps.Out)
	path := config.ResolvePath(cli.Config)

	cfg, err := deps.LoadConfig(path)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	// Run the full adapter derivation so credential-mode errors surface
	// here instead of at deploy time.
	if _, err := buildAdapter(cfg); err != nil {
		return exitWithError(deps.Out, err)
	}

	console.Item("Config", path)
	console.Item("Stack", cfg.StackName)
	console.Success("Configuration is valid")
	return 0
}

func runVersion(deps Dependencies) int {
	fmt.Fprintf(deps.Out, "sbt-amberflo %s\n", version.GetVersion())
	return 0
}
