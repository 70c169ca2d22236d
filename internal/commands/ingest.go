// Where: internal/commands/ingest.go
// What: ingest command.
// Why: Publish a usage event onto the bus the metering service listens on.
package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
)

func runIngest(cli CLI, deps Dependencies) int {
	console := ui.New(deps.Out)
	console.Header("📨", "Ingest usage event")

	cfg, err := deps.LoadConfig(config.ResolvePath(cli.Config))
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	detail := map[string]any{
		"tenantId":     cli.Ingest.Tenant,
		"meterApiName": cli.Ingest.Meter,
		"meterValue":   cli.Ingest.Value,
	}
	for key, value := range cli.Ingest.Dimension {
		if key == "tenantId" || key == "meterApiName" || key == "meterValue" {
			return exitWithError(deps.Out, fmt.Errorf("dimension %q collides with a reserved event field", key))
		}
		detail[key] = value
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return exitWithError(deps.Out, err)
	}

	if cfg.EventBusName == "" {
		console.Info("No event bus configured; publishing to the default bus")
	}

	ctx := context.Background()
	publisher, err := deps.NewPublisher(ctx, cfg.Region)
	if err != nil {
		return exitWithError(deps.Out, err)
	}
	if err := publisher.PublishIngest(ctx, cfg.EventBusName, payload); err != nil {
		return exitWithError(deps.Out, err)
	}

	console.Item("Tenant", cli.Ingest.Tenant)
	console.Item("Meter", cli.Ingest.Meter)
	console.Item("Value", cli.Ingest.Value)
	console.Success("Usage event published")
	return 0
}
