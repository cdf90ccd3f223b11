package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show a month with each recorded day marked",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM); defaults to the current month")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	month := app.Service.Now()
	if calendarMonth != "" {
		m, err := time.ParseInLocation("2006-01", calendarMonth, time.Local)
		if err != nil {
			return usageError(fmt.Errorf("invalid --month value %q: %w", calendarMonth, err))
		}
		month = m
	}
	printCalendar(cmd.OutOrStdout(), month, app.Service.Calendar(cmd.Context()), app.Config.History.NearThreshold)
	return nil
}

var calendarMarks = map[history.Category]string{
	history.CategoryComplete: "+",
	history.CategoryNear:     "~",
	history.CategoryLow:      "-",
}

// printCalendar renders month as a Monday-first grid. Each day is followed
// by its category mark, or a blank when nothing was recorded.
func printCalendar(w io.Writer, month time.Time, marks map[timecalc.DayKey]history.Category, near float64) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	days := first.AddDate(0, 1, -1).Day()

	fmt.Fprintf(w, "%s %d\n", first.Month(), first.Year())
	fmt.Fprintln(w, " Mo  Tu  We  Th  Fr  Sa  Su")

	var b strings.Builder
	offset := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", offset))
	for d := 1; d <= days; d++ {
		day := first.AddDate(0, 0, d-1)
		mark := " "
		if c, ok := marks[timecalc.KeyOf(day)]; ok {
			mark = calendarMarks[c]
		}
		fmt.Fprintf(&b, "%3d%s", d, mark)
		if (offset+d)%7 == 0 || d == days {
			fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
			b.Reset()
		}
	}
	fmt.Fprintf(w, "+ goal met   ~ at least %d%%   - below\n", int(math.Round(near*100)))
}
