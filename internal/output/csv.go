package output

import (
	"encoding/csv"
	"io"

	"github.com/jmylchreest/detag/pkg/table"
)

// CSVWriter writes RFC 4180 CSV with a header row.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes the header followed by every row.
func (w *CSVWriter) Write(t *table.Table) error {
	if err := w.w.Write(t.Header); err != nil {
		return err
	}
	if err := w.w.WriteAll(t.Rows); err != nil {
		return err
	}
	return w.w.Error()
}
