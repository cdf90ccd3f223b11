// Package report renders the history log or a single week as CSV, JSON,
// Markdown or PDF.
package report

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/tracker"
)

type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts csv, json, md (or markdown) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv, json, md or pdf)", s)
}

// Row is one day of a report.
type Row struct {
	Day      timecalc.DayKey  `json:"date"`
	Amount   int              `json:"amount"`
	Goal     int              `json:"goal"`
	Percent  int              `json:"percent"`
	Category history.Category `json:"category"`
}

// Report is a titled list of days with totals.
type Report struct {
	Title   string `json:"title"`
	Period  string `json:"period,omitempty"`
	Rows    []Row  `json:"days"`
	Total   int    `json:"total_ml"`
	DaysMet int    `json:"days_met"`
}

// FromHistory builds a report over the whole log, most recent day first.
func FromHistory(store *history.Store, log model.HistoryLog) Report {
	r := Report{Title: "Water history", Rows: make([]Row, 0, len(log))}
	for _, rec := range log {
		r.add(Row{
			Day:      rec.Day,
			Amount:   rec.Amount,
			Goal:     rec.Goal,
			Percent:  tracker.Percent(rec.Amount, rec.Goal),
			Category: store.Category(rec.Amount, rec.Goal),
		})
	}
	switch n := len(log); n {
	case 0:
	case 1:
		r.Period = "1 day"
	default:
		r.Period = fmt.Sprintf("%d days", n)
	}
	return r
}

// FromWeek builds a report with all seven days of w, Monday first.
func FromWeek(w history.Week) Report {
	r := Report{
		Title:  "Week " + timecalc.ISOWeekLabel(w.Start()),
		Period: w.RangeLabel(),
		Rows:   make([]Row, 0, len(w.Days)),
	}
	for _, d := range w.Days {
		r.add(Row{Day: d.Day, Amount: d.Amount, Goal: d.Goal, Percent: d.Percent(), Category: d.Category})
	}
	return r
}

func (r *Report) add(row Row) {
	r.Rows = append(r.Rows, row)
	r.Total += row.Amount
	if row.Category == history.CategoryComplete {
		r.DaysMet++
	}
}

// Write renders r to w.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, r)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatMarkdown:
		return writeMarkdown(w, r)
	case FormatPDF:
		return writePDF(w, r)
	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

func writeCSV(w io.Writer, r Report) error {
	var b strings.Builder
	b.WriteString("date,amount_ml,goal_ml,percent,category\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "%s,%d,%d,%d,%s\n",
			csvEscape(row.Day.String()), row.Amount, row.Goal, row.Percent, csvEscape(string(row.Category)))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// csvEscape wraps a field in double-quotes if it contains a comma, quote, or
// newline, and doubles any embedded quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeJSON(w io.Writer, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeMarkdown(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if r.Period != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Period)
	}
	if len(r.Rows) == 0 {
		b.WriteString("No records.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("| Date | Amount | Goal | % | Category |\n")
	b.WriteString("|------|-------:|-----:|--:|----------|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
			row.Day, timecalc.FormatML(row.Amount), timecalc.FormatML(row.Goal), row.Percent, row.Category)
	}
	fmt.Fprintf(&b, "\n**Total:** %s, goal met on %d of %d days\n", timecalc.FormatML(r.Total), r.DaysMet, len(r.Rows))
	_, err := io.WriteString(w, b.String())
	return err
}
