// Package cli implements the ebphd command-line interface using Cobra.
// Subcommands split into two groups: direct-store commands (list, show,
// rm) that read the persisted profile store without a running daemon,
// and daemon-control commands (status, normalize, sensitize, tolerize,
// set) that talk to a running ebphd over the HTTP control surface — the
// same split original_source's ebph_admin.py draws between reading
// sqlite directly and issuing requests.put against the running daemon.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ebphd",
	Short: "ebphd — host-based process anomaly detection",
	Long: `ebphd models the benign syscall behavior of every executable on a host
and flags or denies sequences that deviate from what each profile has
learned (pH / ebpH: Process Homeostasis).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
