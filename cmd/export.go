package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/report"
)

var (
	exportFormat string
	exportWeek   bool
	exportDate   string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history or a single week",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, pdf")
	exportCmd.Flags().BoolVar(&exportWeek, "week", false, "Export one week instead of the whole history")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Any day of the exported week (YYYY-MM-DD); implies --week")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		return usageError(err)
	}
	if format == report.FormatPDF && exportOut == "" {
		return usageError(errors.New("--format pdf needs --out <file>"))
	}

	ctx := cmd.Context()
	var r report.Report
	if exportWeek || exportDate != "" {
		anchor, err := parseDateFlag(exportDate, app.Service.Now())
		if err != nil {
			return usageError(err)
		}
		r = report.FromWeek(app.Service.Week(ctx, anchor))
	} else {
		r = report.FromHistory(app.Service.HistoryStore(), app.Service.History(ctx))
	}

	if exportOut == "" {
		if err := report.Write(cmd.OutOrStdout(), format, r); err != nil {
			return storageError(err)
		}
		return nil
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return storageError(fmt.Errorf("creating %s: %w", exportOut, err))
	}
	if err := writeReport(f, format, r); err != nil {
		return storageError(fmt.Errorf("writing %s: %w", exportOut, err))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d days to %s\n", len(r.Rows), exportOut)
	return nil
}

// writeReport writes r to wc and closes it. A failed close is reported
// since buffered data may not have reached the file.
func writeReport(wc io.WriteCloser, format report.Format, r report.Report) (err error) {
	defer func() {
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
	}()
	return report.Write(wc, format, r)
}
