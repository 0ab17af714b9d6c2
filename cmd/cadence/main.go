package main

import (
	"fmt"
	"os"

	"github.com/tgienger/cadence/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Execute(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)))
}
