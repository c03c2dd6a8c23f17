// Package main is the entry point for the recovery-card CLI.
//
// All functionality lives in internal/cli. Build-time variables are
// injected via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse --short HEAD)"
package main

import (
	"github.com/shinji-kodama/recovery-card/internal/cli"
)

// version, commit, and date identify the binary in --version output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
