package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset today's total to zero",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	_, decision := app.Service.ResetDecision(ctx)
	confirmed := resetYes
	if decision.ConfirmationRequired && !confirmed {
		prompt := fmt.Sprintf("Goal not reached: you drank only %d%% of it today. Reset anyway?", decision.Percent)
		confirmed = confirm(cmd.InOrStdin(), w, prompt)
	}

	out := app.Service.Reset(ctx, confirmed)
	if !out.Reset {
		fmt.Fprintln(w, "Reset cancelled.")
		return nil
	}
	warnWrite(cmd, out.WriteErr)
	fmt.Fprintln(w, "Today's total reset to 0 ml.")
	return nil
}
