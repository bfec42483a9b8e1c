package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status: monitoring/enforcing state, profile and task counts",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var result struct {
		Monitoring    bool   `json:"monitoring"`
		Enforcing     bool   `json:"enforcing"`
		Profiles      int    `json:"profiles"`
		Tasks         int    `json:"tasks"`
		EventsDropped uint64 `json:"events_dropped"`
	}
	if err := daemonRequest(http.MethodGet, "/api/status", &result); err != nil {
		return err
	}

	fmt.Printf("Monitoring:    %v\n", result.Monitoring)
	fmt.Printf("Enforcing:     %v\n", result.Enforcing)
	fmt.Printf("Profiles:      %d\n", result.Profiles)
	fmt.Printf("Tasks:         %d\n", result.Tasks)
	fmt.Printf("Events dropped: %d\n", result.EventsDropped)
	return nil
}
