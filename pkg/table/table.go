// Package table reads uploaded CSV and Excel files into an in-memory table.
package table

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/detag/internal/logger"
)

// Format identifies a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DefaultHeaderScanLimit is how many leading rows are searched for the header
// row when ReadOptions.RequiredColumns is set.
const DefaultHeaderScanLimit = 20

// Table is an uploaded table: one header row followed by data rows of
// exactly len(Header) cells each.
type Table struct {
	Name   string
	Format Format
	Header []string
	Rows   [][]string

	// HeaderRow is the 0-based source row the header was taken from.
	HeaderRow int
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of the first header equal to name, ignoring
// surrounding whitespace and case, or -1.
func (t *Table) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// AppendColumn returns a new table with one column added after the existing
// ones. values must hold one entry per data row.
func (t *Table) AppendColumn(name string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("append column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}

	out := &Table{
		Name:      t.Name,
		Format:    t.Format,
		HeaderRow: t.HeaderRow,
		Header:    append(append(make([]string, 0, len(t.Header)+1), t.Header...), name),
		Rows:      make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(append(make([]string, 0, len(row)+1), row...), values[i])
	}
	return out, nil
}

// ReadOptions controls how an upload is turned into a Table.
type ReadOptions struct {
	// Sheet selects the worksheet for Excel files. Empty means the active
	// (xlsx) or first (xls) sheet.
	Sheet string

	// RequiredColumns, when set, makes the first row containing all of these
	// names the header. Rows above it are discarded.
	RequiredColumns []string

	// HeaderScanLimit bounds the header search. Zero means DefaultHeaderScanLimit.
	HeaderScanLimit int

	// Comma is the CSV field delimiter. Zero sniffs ',', ';' or tab from the
	// first line.
	Comma rune
}

// Read parses an uploaded file. name is only used for format detection and
// error messages.
func Read(name string, r io.Reader, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return ReadBytes(name, data, opts)
}

// ReadBytes parses an in-memory upload.
func ReadBytes(name string, data []byte, opts ReadOptions) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(data, opts.Comma)
	case FormatXLSX:
		records, err = readXLSX(data, opts.Sheet)
	case FormatXLS:
		records, err = readXLS(data, opts.Sheet)
	}
	if err != nil {
		return nil, wrapParseError(name, err)
	}

	t, err := build(records, opts, format == FormatCSV)
	if err != nil {
		return nil, wrapParseError(name, err)
	}
	t.Name = name
	t.Format = format

	logger.Debug("table parsed",
		"file", name,
		"format", format,
		"header_row", t.HeaderRow,
		"columns", t.Width(),
		"rows", t.Len())
	return t, nil
}

// build selects the header row and normalises data rows to the header width.
// CSV rows wider than the header row as written are rejected; spreadsheets
// instead grow the header with placeholder names, since a blank header cell
// is common there. Rows without any cells are skipped, rows of empty cells
// are kept.
func build(records [][]string, opts ReadOptions, strict bool) (*Table, error) {
	records = trimTrailingBlank(records)
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	headerIdx := findHeader(records, opts.RequiredColumns, opts.HeaderScanLimit)
	header := trimRow(records[headerIdx])
	if len(header) == 0 {
		return nil, ErrEmpty
	}
	written := len(records[headerIdx])

	rows := make([][]string, 0, len(records)-headerIdx-1)
	for i := headerIdx + 1; i < len(records); i++ {
		if len(records[i]) == 0 {
			continue
		}
		row := trimRow(records[i])
		if len(row) > len(header) {
			if strict && len(row) > written {
				return nil, &ParseError{
					Line: i + 1,
					Err:  fmt.Errorf("expected %d fields, saw %d", written, len(row)),
				}
			}
			for len(header) < len(row) {
				header = append(header, "")
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	for i, row := range rows {
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}

	return &Table{
		Header:    header,
		HeaderRow: headerIdx,
		Rows:      rows,
	}, nil
}

// trimRow drops trailing empty cells so that padding by Excel writers does
// not count as extra columns.
func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return append([]string(nil), row[:end]...)
}

func trimTrailingBlank(records [][]string) [][]string {
	end := len(records)
	for end > 0 && len(trimRow(records[end-1])) == 0 {
		end--
	}
	return records[:end]
}
