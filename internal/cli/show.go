package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ebph-project/ebphd/internal/domain"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Show detailed information about a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	key, err := strconv.ParseUint(args[0], 16, 64)
	if err != nil {
		return fmt.Errorf("invalid profile key %q: %w", args[0], err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	row, err := store.Show(domain.ProfileKey(key))
	if err != nil {
		return err
	}

	fmt.Printf("Key:        %016x\n", uint64(row.Key))
	fmt.Printf("Exe:        %s\n", row.ExePath)
	fmt.Printf("Status:     %s\n", domain.ProfileStatus(row.Status).String())
	fmt.Printf("TrainCount: %d\n", row.TrainCount)
	fmt.Printf("NormalCount: %d\n", row.NormalCount)
	fmt.Printf("Anomalies:  %d\n", row.Anomalies)
	fmt.Printf("Sequences:  %d\n", row.Sequences)
	fmt.Printf("LastSaved:  %s\n", row.LastSaved.Format("2006-01-02 15:04:05"))

	return nil
}
