// Orbit - terminal client for a cloud drive
package main

import (
	"os"

	"github.com/orbit-drive/orbit/internal/cli"
	"github.com/orbit-drive/orbit/internal/version"
)

// Version information, set with -ldflags at build time.
var (
	Version   = "v0.3.0"
	BuildTime = "dev"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
