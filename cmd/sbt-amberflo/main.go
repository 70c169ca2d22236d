// Where: cmd/sbt-amberflo/main.go
// What: CLI entrypoint.
// Why: Execute metering commands with configured dependencies.
package main

import (
	"os"

	"github.com/amberflo/sbt-aws-amberflo/internal/commands"
)

func main() {
	os.Exit(commands.Run(os.Args[1:], buildDependencies()))
}
