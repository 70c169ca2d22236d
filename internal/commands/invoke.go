// Where: internal/commands/invoke.go
// What: invoke command.
// Why: Exercise a deployed capability handle from the CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
)

func runInvoke(cli CLI, deps Dependencies) int {
	console := ui.New(deps.Out)
	console.Header("📡", "Invoke capability")

	cfg, err := deps.LoadConfig(config.ResolvePath(cli.Config))
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	metering, err := buildAdapter(cfg)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	handle, ok := metering.Handle(adapter.Operation(cli.Invoke.Operation))
	if !ok {
		return exitWithError(deps.Out, fmt.Errorf("unknown operation: %s", cli.Invoke.Operation))
	}

	ctx := context.Background()
	invoker, err := deps.NewInvoker(ctx, cfg.Region)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	result, err := invoker.Invoke(ctx, handle, []byte(cli.Invoke.Payload))
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	console.Item("Operation", string(handle.Operation))
	console.Item("Function", handle.FunctionName)
	if result.Async {
		console.Success("Event dispatched")
		return 0
	}
	console.Item("Status", result.StatusCode)
	if len(result.Payload) > 0 {
		fmt.Fprintln(deps.Out, string(result.Payload))
	}
	console.Success("Invocation complete")
	return 0
}
