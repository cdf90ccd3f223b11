package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreYes bool

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Write all data to a compressed snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace all data with a snapshot written by backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
}

func runBackup(cmd *cobra.Command, args []string) error {
	n, err := app.Snapshots.Save(cmd.Context(), args[0])
	if err != nil {
		return storageError(fmt.Errorf("writing backup: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d keys to %s\n", n, args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if !restoreYes && !confirm(cmd.InOrStdin(), w, "Replace all current data with "+args[0]+"?") {
		fmt.Fprintln(w, "Nothing restored.")
		return nil
	}
	n, err := app.Snapshots.Restore(cmd.Context(), args[0])
	if err != nil {
		return storageError(fmt.Errorf("restoring backup: %w", err))
	}
	fmt.Fprintf(w, "Restored %d keys from %s\n", n, args[0])
	return nil
}
