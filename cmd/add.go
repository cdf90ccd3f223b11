package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

var addCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Log water you drank, e.g. 250, 250ml or 0.5l",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return usageError(err)
	}

	out, err := app.Service.AddWater(cmd.Context(), amount)
	if err != nil {
		return usageError(err)
	}
	warnWrite(cmd, out.WriteErr)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Added %s. Today: %s of %s (%d%%)\n",
		timecalc.FormatML(out.Added), timecalc.FormatML(out.Amount), timecalc.FormatML(out.Goal), out.Percent)
	if out.GoalReached {
		fmt.Fprintln(w, "Congratulations! You reached your daily goal.")
	}
	return nil
}

// parseAmount reads an amount in millilitres. A trailing "ml" is optional;
// a trailing "l" means litres.
func parseAmount(s string) (int, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	factor := 1.0
	switch {
	case strings.HasSuffix(in, "ml"):
		in = strings.TrimSuffix(in, "ml")
	case strings.HasSuffix(in, "l"):
		in = strings.TrimSuffix(in, "l")
		factor = 1000
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(in), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q: use e.g. 250, 250ml or 0.5l", s)
	}
	ml := int(math.Round(v * factor))
	if ml <= 0 {
		return 0, errors.New("amount must be positive")
	}
	return ml, nil
}
