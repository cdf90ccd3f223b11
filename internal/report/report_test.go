package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-water-tracker/internal/history"
	"github.com/Tiliavir/trivial-water-tracker/internal/model"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{" pdf ", FormatPDF, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func sampleLog() model.HistoryLog {
	return model.HistoryLog{
		{Day: "2024-01-17", Amount: 2100, Goal: 2000},
		{Day: "2024-01-16", Amount: 1500, Goal: 2000},
		{Day: "2024-01-15", Amount: 400, Goal: 2000},
	}
}

func TestFromHistory(t *testing.T) {
	r := FromHistory(history.NewStore(history.DefaultPolicy()), sampleLog())

	require.Len(t, r.Rows, 3)
	assert.Equal(t, 4000, r.Total)
	assert.Equal(t, 1, r.DaysMet)
	assert.Equal(t, Row{Day: "2024-01-16", Amount: 1500, Goal: 2000, Percent: 75, Category: history.CategoryNear}, r.Rows[1])
	assert.Equal(t, history.CategoryLow, r.Rows[2].Category)
}

func TestFromWeek(t *testing.T) {
	store := history.NewStore(history.DefaultPolicy())
	week := store.WeekView(sampleLog(), time.Date(2024, 1, 17, 12, 0, 0, 0, time.Local), 2000)

	r := FromWeek(week)
	assert.Equal(t, "Week 2024-W03", r.Title)
	assert.Equal(t, "15.1 - 21.1.2024", r.Period)
	require.Len(t, r.Rows, 7)
	assert.Equal(t, "2024-01-15", r.Rows[0].Day.String())
	assert.Equal(t, 0, r.Rows[6].Amount)
	assert.Equal(t, 4000, r.Total)
}

func TestWriteCSV(t *testing.T) {
	r := FromHistory(history.NewStore(history.DefaultPolicy()), sampleLog())
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, r))

	want := "date,amount_ml,goal_ml,percent,category\n" +
		"2024-01-17,2100,2000,105,complete\n" +
		"2024-01-16,1500,2000,75,near\n" +
		"2024-01-15,400,2000,20,low\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	r := FromHistory(history.NewStore(history.DefaultPolicy()), sampleLog()[:1])
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, r))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r, decoded)
	assert.Contains(t, buf.String(), `"total_ml": 2100`)
}

func TestWriteMarkdown(t *testing.T) {
	r := FromHistory(history.NewStore(history.DefaultPolicy()), sampleLog())
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, r))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Water history\n"))
	assert.Contains(t, out, "| 2024-01-16 | 1.5 l | 2 l | 75 | near |")
	assert.Contains(t, out, "**Total:** 4 l, goal met on 1 of 3 days")
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, FromHistory(history.NewStore(history.DefaultPolicy()), nil)))
	assert.Contains(t, buf.String(), "No records.")
}

func TestWritePDF(t *testing.T) {
	store := history.NewStore(history.DefaultPolicy())
	reports := map[string]Report{
		"history": FromHistory(store, sampleLog()),
		"week":    FromWeek(store.WeekView(sampleLog(), time.Date(2024, 1, 17, 12, 0, 0, 0, time.Local), 2000)),
		"empty":   FromHistory(store, nil),
	}
	for name, r := range reports {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, FormatPDF, r))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("xlsx"), Report{}))
}
