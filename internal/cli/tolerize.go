package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tolerizeCmd)
}

var tolerizeCmd = &cobra.Command{
	Use:   "tolerize KEY",
	Short: "Clear the training table and counters, retaining the test table",
	Args:  cobra.ExactArgs(1),
	RunE:  runTolerize,
}

func runTolerize(cmd *cobra.Command, args []string) error {
	var result map[string]any
	if err := daemonRequest(http.MethodPost, fmt.Sprintf("/profiles/%s/tolerize", args[0]), &result); err != nil {
		return err
	}
	fmt.Printf("profile %s: status=%v\n", args[0], result["status"])
	return nil
}
