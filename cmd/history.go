package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
)

var historyClearYes bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded days, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded days",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyClearCmd.Flags().BoolVarP(&historyClearYes, "yes", "y", false, "Do not ask for confirmation")
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	log := app.Service.History(cmd.Context())
	if len(log) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return nil
	}

	for _, rec := range log {
		fmt.Fprintf(w, "%s  %8s / %-8s %4d%%  %s\n",
			rec.Day, timecalc.FormatML(rec.Amount), timecalc.FormatML(rec.Goal),
			tracker.Percent(rec.Amount, rec.Goal), app.Service.Category(rec))
	}
	fmt.Fprintf(w, "%d of at most %d days\n", len(log), app.Config.History.RetentionCap)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if !historyClearYes && !confirm(cmd.InOrStdin(), w, "Delete the whole history?") {
		fmt.Fprintln(w, "Nothing deleted.")
		return nil
	}
	if err := app.Service.ClearHistory(cmd.Context()); err != nil {
		return storageError(fmt.Errorf("clearing history: %w", err))
	}
	fmt.Fprintln(w, "History cleared.")
	return nil
}
