package history

import (
	"time"

	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
)

// DayEntry is one day of a Week.
type DayEntry struct {
	Date     time.Time       `json:"-"`
	Day      timecalc.DayKey `json:"date"`
	Amount   int             `json:"amount"`
	Goal     int             `json:"goal"`
	Recorded bool            `json:"recorded"`
	Category Category        `json:"category"`
}

// Percent is the rounded share of the goal reached that day.
func (e DayEntry) Percent() int {
	return tracker.Percent(e.Amount, e.Goal)
}

// Week holds Monday..Sunday in order.
type Week struct {
	Days [7]DayEntry `json:"days"`
}

// Start is the Monday of the week.
func (w Week) Start() time.Time { return w.Days[0].Date }

// End is the Sunday of the week.
func (w Week) End() time.Time { return w.Days[6].Date }

// RangeLabel renders the span as "15.1 - 21.1.2024".
func (w Week) RangeLabel() string {
	return timecalc.RangeLabel(w.Start(), w.End())
}

// Labels returns the per-day chart labels.
func (w Week) Labels() []string {
	labels := make([]string, len(w.Days))
	for i, d := range w.Days {
		labels[i] = timecalc.ShortLabel(d.Date)
	}
	return labels
}

// Amounts returns the per-day amounts in chart order.
func (w Week) Amounts() []int {
	amounts := make([]int, len(w.Days))
	for i, d := range w.Days {
		amounts[i] = d.Amount
	}
	return amounts
}

// HasData reports whether any day has a positive amount.
func (w Week) HasData() bool {
	for _, d := range w.Days {
		if d.Amount > 0 {
			return true
		}
	}
	return false
}

// Total sums the week's amounts.
func (w Week) Total() int {
	var total int
	for _, d := range w.Days {
		total += d.Amount
	}
	return total
}

// Max returns the largest single-day amount.
func (w Week) Max() int {
	var m int
	for _, d := range w.Days {
		m = max(m, d.Amount)
	}
	return m
}

// DaysMet counts days categorised complete.
func (w Week) DaysMet() int {
	var n int
	for _, d := range w.Days {
		if d.Category == CategoryComplete {
			n++
		}
	}
	return n
}

// Details returns the days with a positive amount, in week order.
func (w Week) Details() []DayEntry {
	var out []DayEntry
	for _, d := range w.Days {
		if d.Amount > 0 {
			out = append(out, d)
		}
	}
	return out
}
