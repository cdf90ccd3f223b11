package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
)

const (
	pdfFont     = "Arial"
	chartHeight = 50.0
	chartWidth  = 170.0
)

// writePDF lays out a title, a bar chart of the amounts and a table.
func writePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, false)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.Cell(0, 10, r.Title)
	pdf.Ln(8)
	if r.Period != "" {
		pdf.SetFont(pdfFont, "", 12)
		pdf.Cell(0, 8, r.Period)
		pdf.Ln(10)
	}

	if len(r.Rows) == 0 {
		pdf.SetFont(pdfFont, "", 10)
		pdf.Cell(0, 6, "No records.")
	} else {
		drawChart(pdf, r.Rows)
		drawTable(pdf, r)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

// drawChart draws one bar per row, oldest on the left, scaled to the
// largest of all amounts and goals.
func drawChart(pdf *gofpdf.Fpdf, rows []Row) {
	scale := 0
	for _, row := range rows {
		scale = max(scale, row.Amount, row.Goal)
	}
	if scale == 0 {
		return
	}

	x0, y0 := pdf.GetX(), pdf.GetY()
	slot := chartWidth / float64(len(rows))
	barWidth := slot * 0.6

	pdf.SetFont(pdfFont, "", 7)
	for i := range rows {
		row := rows[len(rows)-1-i]
		h := chartHeight * float64(row.Amount) / float64(scale)
		x := x0 + float64(i)*slot + (slot-barWidth)/2

		r, g, b := categoryColor(row.Category)
		pdf.SetFillColor(r, g, b)
		if h > 0 {
			pdf.Rect(x, y0+chartHeight-h, barWidth, h, "F")
		}

		goalY := y0 + chartHeight - chartHeight*float64(row.Goal)/float64(scale)
		pdf.SetDrawColor(120, 120, 120)
		pdf.Line(x-1, goalY, x+barWidth+1, goalY)

		if len(rows) <= 14 {
			pdf.SetXY(x0+float64(i)*slot, y0+chartHeight+1)
			pdf.CellFormat(slot, 4, dayLabel(row.Day), "", 0, "C", false, 0, "")
		}
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetXY(x0, y0+chartHeight+8)
}

func drawTable(pdf *gofpdf.Fpdf, r Report) {
	pdf.SetFont(pdfFont, "B", 9)
	headers := []string{"Date", "Amount", "Goal", "%", "Category"}
	widths := []float64{35, 30, 30, 20, 35}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFont, "", 9)
	for _, row := range r.Rows {
		pdf.CellFormat(widths[0], 6, row.Day.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, timecalc.FormatML(row.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, timecalc.FormatML(row.Goal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, strconv.Itoa(row.Percent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, string(row.Category), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont(pdfFont, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %s, goal met on %d of %d days",
		timecalc.FormatML(r.Total), r.DaysMet, len(r.Rows)))
}

func categoryColor(c history.Category) (int, int, int) {
	switch c {
	case history.CategoryComplete:
		return 46, 204, 113
	case history.CategoryNear:
		return 241, 196, 15
	default:
		return 231, 76, 60
	}
}

func dayLabel(k timecalc.DayKey) string {
	t, err := k.Time(time.Local)
	if err != nil {
		return k.String()
	}
	return timecalc.ShortLabel(t)
}
