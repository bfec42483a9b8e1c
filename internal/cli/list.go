package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ebph-project/ebphd/internal/domain"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List persisted profiles",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.List()
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No profiles saved yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tEXE\tSTATUS\tTRAIN\tNORMAL\tANOMALIES\tSAVED")
	for _, r := range rows {
		fmt.Fprintf(w, "%016x\t%s\t%s\t%d\t%d\t%d\t%s\n",
			uint64(r.Key),
			r.ExePath,
			domain.ProfileStatus(r.Status).String(),
			r.TrainCount,
			r.NormalCount,
			r.Anomalies,
			r.LastSaved.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
