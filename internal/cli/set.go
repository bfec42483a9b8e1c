package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Set a runtime tunable (e.g. MONITORING, ENFORCING, ANOMALY_LIMIT)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	name, value := args[0], args[1]

	var result map[string]string
	path := fmt.Sprintf("/settings/%s/%s", name, value)
	if err := daemonRequest(http.MethodPut, path, &result); err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", name, result["result"])
	return nil
}
