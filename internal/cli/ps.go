package cli

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(psCmd)
}

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List tasks currently tracked by the running daemon",
	RunE:  runPs,
}

type taskRow struct {
	Tid        int32  `json:"tid"`
	Pid        int32  `json:"pid"`
	ProfileKey string `json:"profile_key"`
	Count      uint64 `json:"count"`
}

func runPs(cmd *cobra.Command, args []string) error {
	var tasks []taskRow
	if err := daemonRequest(http.MethodGet, "/tasks", &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks currently tracked.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TID\tPID\tPROFILE\tWINDOW")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", t.Tid, t.Pid, t.ProfileKey, t.Count)
	}
	return w.Flush()
}
