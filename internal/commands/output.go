// Where: internal/commands/output.go
// What: Command output helpers.
// Why: Keep error reporting uniform across commands.
package commands

import (
	"fmt"
	"io"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
	"github.com/amberflo/sbt-aws-amberflo/internal/config"
	"github.com/amberflo/sbt-aws-amberflo/internal/ui"
)

const adapterID = "metering"

func exitWithError(out io.Writer, err error) int {
	console := ui.New(out)
	console.Warn(fmt.Sprintf("Error: %v", err))
	return 1
}

func errUnknownCommand(name string) error {
	return fmt.Errorf("unknown command: %s", name)
}

// buildAdapter constructs the metering adapter declared by a config file.
// Every command that needs the function declaration or the capability map
// goes through here so all of them see the same derivation.
func buildAdapter(cfg config.Config) (*adapter.Adapter, error) {
	scope := adapter.NewScope(cfg.StackName)
	return adapter.New(scope, adapterID, cfg.Adapter)
}
