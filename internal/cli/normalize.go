package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize KEY",
	Short: "Force a profile to FROZEN, skipping the maturity/steadiness wait",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	var result map[string]any
	if err := daemonRequest(http.MethodPost, fmt.Sprintf("/profiles/%s/normalize", args[0]), &result); err != nil {
		return err
	}
	fmt.Printf("profile %s: status=%v\n", args[0], result["status"])
	return nil
}
