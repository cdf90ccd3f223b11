package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
)

const gaugeWidth = 30

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	snap := app.Service.Today(cmd.Context())
	w := cmd.OutOrStdout()

	if snap.Profile != nil && snap.Profile.Name != "" {
		fmt.Fprintf(w, "Hello, %s!\n", snap.Profile.Name)
	}
	fmt.Fprintf(w, "Today (%s): %s of %s\n", snap.Day, timecalc.FormatML(snap.Amount), timecalc.FormatML(snap.Goal))
	fmt.Fprintf(w, "  %s %d%%\n", renderGauge(snap.Gauge), snap.Percent)
	fmt.Fprintf(w, "  %s\n", snap.Status.Message())
	if snap.Profile == nil || snap.Profile.Weight <= 0 {
		fmt.Fprintln(w, "Tip: set your weight with 'twt profile set --weight <kg>' for a personal goal.")
	}
	return nil
}

// renderGauge draws the capped percentage as a bar; the "|" marks 100%.
func renderGauge(pct float64) string {
	pct = math.Max(0, math.Min(pct, tracker.GaugeCap))
	filled := int(math.Round(pct / tracker.GaugeCap * gaugeWidth))
	goalAt := gaugeWidth * 100 / tracker.GaugeCap

	var b strings.Builder
	b.WriteByte('[')
	for i := range gaugeWidth {
		switch {
		case i == goalAt:
			b.WriteByte('|')
		case i < filled:
			b.WriteByte('#')
		default:
			b.WriteByte('.')
		}
	}
	b.WriteByte(']')
	return b.String()
}
