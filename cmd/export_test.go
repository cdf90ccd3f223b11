package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/trivial-water-tracker/internal/report"
)

type closeRecorder struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.closeErr
}

func TestWriteReport(t *testing.T) {
	r := report.Report{Title: "Water history"}

	t.Run("ok", func(t *testing.T) {
		out := &closeRecorder{}
		assert.NoError(t, writeReport(out, report.FormatCSV, r))
		assert.True(t, out.closed)
		assert.Contains(t, out.String(), "date,amount_ml")
	})

	t.Run("close error", func(t *testing.T) {
		errFlush := errors.New("flush failed")
		out := &closeRecorder{closeErr: errFlush}
		assert.ErrorIs(t, writeReport(out, report.FormatCSV, r), errFlush)
		assert.True(t, out.closed)
	})

	t.Run("write error wins", func(t *testing.T) {
		out := &closeRecorder{closeErr: errors.New("flush failed")}
		err := writeReport(out, report.Format("xlsx"), r)
		assert.ErrorContains(t, err, "xlsx")
		assert.True(t, out.closed)
	})
}
