// Command druglike screens approved drugs by the Rule of Five and the Rule
// of Three.
package main

import (
	"context"
	"os"

	"github.com/turtacn/druglike/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
