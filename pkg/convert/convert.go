// Package convert applies an HTML cleaner to every row of an uploaded table.
package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/detag/pkg/cleaner"
	"github.com/jmylchreest/detag/pkg/cleaner/text"
	"github.com/jmylchreest/detag/pkg/table"
)

// DefaultOutputHeader names the appended text column.
const DefaultOutputHeader = "Natural Language Output"

// ErrColumn indicates the requested HTML column does not exist.
var ErrColumn = errors.New("invalid html column")

// ColumnRef selects the HTML column by 0-based index or by header name.
// The zero value selects the first column.
type ColumnRef struct {
	Index int
	Name  string
}

// ParseColumnRef accepts either a number or a header name.
func ParseColumnRef(s string) ColumnRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return ColumnRef{}
	}
	if i, err := strconv.Atoi(s); err == nil {
		return ColumnRef{Index: i}
	}
	return ColumnRef{Name: s}
}

// Resolve returns the column index within tbl.
func (c ColumnRef) Resolve(tbl *table.Table) (int, error) {
	if c.Name != "" {
		idx := tbl.ColumnIndex(c.Name)
		if idx < 0 {
			return 0, fmt.Errorf("%w: no column named %q", ErrColumn, c.Name)
		}
		return idx, nil
	}
	if c.Index < 0 || c.Index >= tbl.Width() {
		return 0, fmt.Errorf("%w: index %d outside 0..%d", ErrColumn, c.Index, tbl.Width()-1)
	}
	return c.Index, nil
}

// String renders the reference the way ParseColumnRef reads it.
func (c ColumnRef) String() string {
	if c.Name != "" {
		return c.Name
	}
	return strconv.Itoa(c.Index)
}

// Options configures Convert.
type Options struct {
	Column       ColumnRef
	OutputHeader string
}

// ExtractedRow pairs an HTML cell with the text derived from it.
type ExtractedRow struct {
	Index int
	HTML  string
	Text  string
}

// Result is the converted table and per-row extraction details.
type Result struct {
	Table    *table.Table
	Rows     []ExtractedRow
	Column   int
	Cleaner  string
	Duration time.Duration

	// Stats totals per-row cleaner statistics when the cleaner reports them.
	Stats    *text.Stats
	Warnings int
}

// Convert strips the HTML column of every row and appends the text as the
// last column. Row order and existing columns are preserved.
func Convert(tbl *table.Table, cl cleaner.Cleaner, opts Options) (*Result, error) {
	start := time.Now()
	if tbl == nil || tbl.Width() == 0 {
		return nil, table.ErrEmpty
	}
	if tbl.Len() == 0 {
		return nil, table.ErrNoRows
	}

	col, err := opts.Column.Resolve(tbl)
	if err != nil {
		return nil, err
	}
	header := opts.OutputHeader
	if header == "" {
		header = DefaultOutputHeader
	}

	var (
		stats    *text.Stats
		warnings int
	)
	sc, withStats := cl.(cleaner.StatsCleaner)
	if withStats {
		stats = text.NewStats()
	}

	rows := make([]ExtractedRow, len(tbl.Rows))
	texts := make([]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		var plain string
		if withStats {
			r := sc.CleanWithStats(row[col])
			stats.Add(r.Stats)
			warnings += len(r.Warnings)
			plain = r.Content
		} else {
			plain, err = cl.Clean(row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d: %s cleaner: %w", i+1, cl.Name(), err)
			}
		}
		rows[i] = ExtractedRow{Index: i, HTML: row[col], Text: plain}
		texts[i] = plain
	}

	out, err := tbl.AppendColumn(header, texts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Table:    out,
		Rows:     rows,
		Column:   col,
		Cleaner:  cl.Name(),
		Duration: time.Since(start),
		Stats:    stats,
		Warnings: warnings,
	}, nil
}
