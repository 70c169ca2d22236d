// Where: internal/commands/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/dispatch"
	"github.com/amberflo/sbt-aws-amberflo/internal/manifest"
	"github.com/amberflo/sbt-aws-amberflo/internal/provisioner"
)

// Provisioner applies a declaration to the deployment target.
type Provisioner interface {
	Apply(ctx context.Context, spec manifest.ResourcesSpec, opts provisioner.Options) error
}

// Dependencies holds all injected dependencies required for command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of the AWS-facing subsystems.
type Dependencies struct {
	Out            io.Writer
	LoadConfig     func(path string) (config.Config, error)
	ReadFile       func(path string) ([]byte, error)
	WriteFile      func(path string, content []byte) error
	NewProvisioner func(region string) Provisioner
	NewInvoker     func(ctx context.Context, region string) (dispatch.Invoker, error)
	NewPublisher   func(ctx context.Context, region string) (dispatch.IngestPublisher, error)
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Config   string      `short:"c" help:"Path to configuration file (default: sbt-amberflo.yml)"`
	Synth    SynthCmd    `cmd:"" help:"Render the deployment template"`
	Deploy   DeployCmd   `cmd:"" help:"Provision the metering service"`
	Invoke   InvokeCmd   `cmd:"" help:"Invoke a capability handle"`
	Ingest   IngestCmd   `cmd:"" help:"Publish a usage event to the bus"`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type (
	SynthCmd struct {
		Out string `short:"o" help:"Template output path (default: <stack>-template.yml)"`
	}
	DeployCmd struct {
		Code string `help:"Path to the function code package (overrides codePackage)"`
	}
	InvokeCmd struct {
		Operation string `arg:"" help:"Capability operation (e.g. createMeter, fetchUsage)"`
		Payload   string `short:"p" default:"{}" help:"JSON payload for the invocation"`
	}
	IngestCmd struct {
		Tenant    string            `required:"" help:"Tenant identifier"`
		Meter     string            `required:"" help:"Meter API name"`
		Value     float64           `required:"" help:"Meter value"`
		Dimension map[string]string `short:"d" help:"Extra event dimensions (key=value)"`
	}
	ValidateCmd struct{}
	VersionCmd  struct{}
)

// Run parses arguments and dispatches to the matching command handler.
// Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	deps.Out = out
	applyDefaults(&deps)

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("sbt-amberflo"),
		kong.Description("Amberflo metering adapter for SBT-style SaaS control planes"),
		kong.Writers(out, out),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return exitWithError(out, err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	switch kctx.Command() {
	case "synth":
		return runSynth(cli, deps)
	case "deploy":
		return runDeploy(cli, deps)
	case "invoke <operation>":
		return runInvoke(cli, deps)
	case "ingest":
		return runIngest(cli, deps)
	case "validate":
		return runValidate(cli, deps)
	case "version":
		return runVersion(deps)
	}
	return exitWithError(out, errUnknownCommand(kctx.Command()))
}

func applyDefaults(deps *Dependencies) {
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}
	if deps.ReadFile == nil {
		deps.ReadFile = os.ReadFile
	}
	if deps.WriteFile == nil {
		deps.WriteFile = func(path string, content []byte) error {
			return os.WriteFile(path, content, 0o644)
		}
	}
	if deps.NewProvisioner == nil {
		deps.NewProvisioner = func(region string) Provisioner {
			return provisioner.New(region)
		}
	}
	if deps.NewInvoker == nil {
		deps.NewInvoker = dispatch.NewAWSInvoker
	}
	if deps.NewPublisher == nil {
		deps.NewPublisher = dispatch.NewAWSIngestPublisher
	}
}
