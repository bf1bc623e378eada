package table

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/richardlehane/mscfb"
)

var errNoWorkbookStream = errors.New("not an Excel 97-2003 workbook: no Workbook stream")

// checkWorkbookStream verifies data is an OLE compound file holding a BIFF
// workbook stream.
func checkWorkbookStream(data []byte) error {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an Excel 97-2003 workbook: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "Workbook" || entry.Name == "Book" {
			return nil
		}
	}
	return errNoWorkbookStream
}

// readXLS returns the cell values of one legacy BIFF worksheet.
func readXLS(data []byte, sheet string) (records [][]string, err error) {
	// The BIFF decoder panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	if err := checkWorkbookStream(data); err != nil {
		return nil, err
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrEmpty
	}

	var ws *xls.WorkSheet
	if sheet == "" {
		ws = wb.GetSheet(0)
	} else {
		for i := 0; i < wb.NumSheets(); i++ {
			if s := wb.GetSheet(i); s != nil && s.Name == sheet {
				ws = s
				break
			}
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	records = make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := sheetRow(ws, i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		records = append(records, cells)
	}
	return records, nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
// WorkSheet.Row dereferences the missing row instead of returning nil.
func sheetRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
