// Package main is the entrypoint for ebphd, the host-based process
// anomaly detection daemon.
package main

import "github.com/ebph-project/ebphd/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
