// Where: internal/commands/deploy.go
// What: deploy command.
// Why: Provision the metering service from the config-declared adapter.
package commands

import (
	"context"
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/provisioner"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
)

func runDeploy(cli CLI, deps Dependencies) int {
	console := ui.New(deps.Out)
	console.Header("🚀", "Deploy metering service")

	cfg, err := deps.LoadConfig(config.ResolvePath(cli.Config))
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	metering, err := buildAdapter(cfg)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	codePath := cli.Deploy.Code
	if codePath == "" {
		codePath = cfg.CodePackage
	}
	if codePath == "" {
		return exitWithError(deps.Out, fmt.Errorf("code package not set; pass --code or set codePackage"))
	}
	code, err := deps.ReadFile(codePath)
	if err != nil {
		return exitWithError(deps.Out, fmt.Errorf("read code package %s: %w", codePath, err))
	}

	console.Item("Stack", cfg.StackName)
	console.Item("Function", metering.Spec().Function.Name)
	console.Item("Package", codePath)

	runner := deps.NewProvisioner(cfg.Region)
	opts := provisioner.Options{
		Code:           code,
		ArtifactBucket: cfg.ArtifactBucket,
	}
	if err := runner.Apply(context.Background(), metering.Spec(), opts); err != nil {
		return exitWithError(deps.Out, err)
	}

	console.Success("Metering service deployed")
	return 0
}
