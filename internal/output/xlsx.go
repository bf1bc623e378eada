package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jmylchreest/detag/pkg/table"
)

// XLSXWriter writes a single-sheet workbook.
type XLSXWriter struct {
	w     io.Writer
	sheet string
}

// NewXLSXWriter creates an xlsx writer. The sheet is named sheet.
func NewXLSXWriter(w io.Writer, sheet string) *XLSXWriter {
	return &XLSXWriter{w: w, sheet: sheet}
}

// Write builds the workbook in memory and streams it to the underlying writer.
func (w *XLSXWriter) Write(t *table.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if w.sheet != "" && w.sheet != sheet {
		if err := f.SetSheetName(sheet, w.sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		sheet = w.sheet
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet %q: %w", sheet, err)
	}
	for i, row := range append([][]string{t.Header}, t.Rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w.w)
}
