// Where: internal/commands/synth.go
// What: synth command.
// Why: Emit the deployable template without touching the AWS account.
package commands

import (
	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/generator"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
)

func runSynth(cli CLI, deps Dependencies) int {
	console := ui.New(deps.Out)
	console.Header("🧾", "Synthesize template")

	cfg, err := deps.LoadConfig(config.ResolvePath(cli.Config))
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	metering, err := buildAdapter(cfg)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	rendered, err := generator.RenderTemplate(cfg.StackName, metering.Spec(), metering.Capabilities())
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	outPath := cli.Synth.Out
	if outPath == "" {
		outPath = cfg.StackName + "-template.yml"
	}
	if err := deps.WriteFile(outPath, []byte(rendered)); err != nil {
		return exitWithError(deps.Out, err)
	}

	console.Item("Stack", cfg.StackName)
	console.Item("Function", metering.Spec().Function.Name)
	console.Success("Template written to " + outPath)
	return 0
}
