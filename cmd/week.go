package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

const barWidth = 30

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show a Monday–Sunday chart of the week",
	Args:  cobra.NoArgs,
	RunE:  runWeek,
}

func init() {
	weekCmd.Flags().StringVar(&weekDate, "date", "", "Any day of the week to show (YYYY-MM-DD); defaults to today")
}

func runWeek(cmd *cobra.Command, args []string) error {
	anchor, err := parseDateFlag(weekDate, app.Service.Now())
	if err != nil {
		return usageError(err)
	}
	printWeek(cmd.OutOrStdout(), app.Service.Week(cmd.Context(), anchor))
	return nil
}

// parseDateFlag parses a --date value in local time; empty means now.
func parseDateFlag(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	key, err := timecalc.ParseDayKey(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date value %q: %w", s, err)
	}
	return key.Time(time.Local)
}

func printWeek(w io.Writer, week history.Week) {
	fmt.Fprintf(w, "Week %s (%s)\n", timecalc.ISOWeekLabel(week.Start()), week.RangeLabel())
	if !week.HasData() {
		fmt.Fprintln(w, "No data for this week.")
		return
	}

	scale := week.Max()
	for _, d := range week.Days {
		scale = max(scale, d.Goal)
	}
	labels := week.Labels()
	for i, d := range week.Days {
		fmt.Fprintf(w, "%s %-6s %s %8s\n", d.Date.Format("Mon"), labels[i], bar(d.Amount, scale), timecalc.FormatML(d.Amount))
	}

	fmt.Fprintln(w)
	for _, d := range week.Details() {
		fmt.Fprintf(w, "  %s  %s of %s  %3d%%  %s\n",
			d.Day, timecalc.FormatML(d.Amount), timecalc.FormatML(d.Goal), d.Percent(), d.Category)
	}
	fmt.Fprintf(w, "Total %s, goal met on %d of 7 days\n", timecalc.FormatML(week.Total()), week.DaysMet())
}

// bar renders amount relative to scale as a fixed-width bar.
func bar(amount, scale int) string {
	n := 0
	if scale > 0 {
		n = min(barWidth, amount*barWidth/scale)
	}
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}
