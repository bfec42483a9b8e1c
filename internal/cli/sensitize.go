package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sensitizeCmd)
}

var sensitizeCmd = &cobra.Command{
	Use:   "sensitize KEY",
	Short: "Clear both lookahead tables and all counters for a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runSensitize,
}

func runSensitize(cmd *cobra.Command, args []string) error {
	var result map[string]any
	if err := daemonRequest(http.MethodPost, fmt.Sprintf("/profiles/%s/sensitize", args[0]), &result); err != nil {
		return err
	}
	fmt.Printf("profile %s: status=%v\n", args[0], result["status"])
	return nil
}
