package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ebph-project/ebphd/internal/domain"
)

func init() {
	rootCmd.AddCommand(rmCmd)
}

var rmCmd = &cobra.Command{
	Use:     "rm KEY",
	Aliases: []string{"forget"},
	Short:   "Remove a saved profile from local storage",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	key, err := strconv.ParseUint(args[0], 16, 64)
	if err != nil {
		return fmt.Errorf("invalid profile key %q: %w", args[0], err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Forget(domain.ProfileKey(key)); err != nil {
		return err
	}

	fmt.Printf("Removed %016x\n", key)
	return nil
}
