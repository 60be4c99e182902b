// Tauri Drive engine - file sync backend for Cloudflare R2
package main

import (
	"os"

	"github.com/tauri-drive/engine/internal/cli"
	"github.com/tauri-drive/engine/internal/version"
)

// Version information
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
)

func main() {
	// Set version in version package (canonical source for all packages)
	// and CLI package (for the root command's help text)
	version.Version = Version
	version.BuildTime = BuildTime
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
