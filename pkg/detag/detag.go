// Package detag provides the public API for converting HTML columns of CSV
// and Excel files into plain text.
package detag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/pkg/cleaner"
	"github.com/jmylchreest/detag/pkg/cleaner/text"
	"github.com/jmylchreest/detag/pkg/convert"
	"github.com/jmylchreest/detag/pkg/table"
)

// ComparisonName is the file stem of comparison-mode output.
const ComparisonName = "comparison_results"

// Upload is one file as received from a client.
type Upload struct {
	Name string
	Data []byte
}

// Output is a serialized result ready to be sent or saved.
type Output struct {
	Filename    string
	ContentType string
	Format      output.Format
	Body        []byte

	Rows      int // rows written
	Unmatched int // comparison mode only
	Failed    int // comparison mode only
	Duration  time.Duration

	// Stats totals the cleaner statistics over all rows. Nil when the
	// cleaner does not report them.
	Stats    *text.Stats
	Warnings int
}

// Detag converts uploads with a fixed configuration.
// It is safe for concurrent use.
type Detag struct {
	config  Config
	cleaner cleaner.Cleaner
}

// New creates a new Detag instance.
func New(opts ...Option) (*Detag, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(cfg)
}

func build(cfg Config) (*Detag, error) {
	if cfg.Format == "" {
		cfg.Format = output.FormatCSV
	}
	if _, err := output.ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}

	cl := cfg.cleaner
	if cl == nil {
		var err error
		cl, err = cleaner.New(cfg.Cleaner, cfg.CleanerConfig)
		if err != nil {
			return nil, err
		}
	}
	return &Detag{config: cfg, cleaner: cl}, nil
}

// Config returns a copy of the active configuration.
func (d *Detag) Config() Config {
	return d.config
}

// With returns a Detag with opts applied on top of the current configuration.
// The cleaner is reused unless an option selects another one.
func (d *Detag) With(opts ...Option) (*Detag, error) {
	if len(opts) == 0 {
		return d, nil
	}
	cfg := d.config
	cfg.cleaner = d.cleaner
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(cfg)
}

// Convert reads one upload, appends the text column and serializes the
// result. The output is named "<stem>_text.<ext>".
func (d *Detag) Convert(ctx context.Context, up Upload) (*Output, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	tbl, err := table.ReadBytes(up.Name, up.Data, table.ReadOptions{
		Sheet:           d.config.Sheet,
		HeaderScanLimit: d.config.HeaderScanLimit,
		Comma:           d.config.Delimiter,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := convert.Convert(tbl, d.cleaner, convert.Options{
		Column:       d.config.Column,
		OutputHeader: d.config.OutputHeader,
	})
	if err != nil {
		return nil, err
	}

	format := output.Resolve(d.config.Format, tbl.Format)
	out, err := d.write(res.Table, format, stem(up.Name)+"_text")
	if err != nil {
		return nil, err
	}
	out.Rows = res.Table.Len()
	out.Stats = res.Stats
	out.Warnings = res.Warnings
	out.Duration = time.Since(start)

	attrs := []any{
		"file", up.Name,
		"rows", out.Rows,
		"column", res.Column,
		"cleaner", res.Cleaner,
		"format", format,
		"duration", out.Duration,
	}
	if res.Stats != nil {
		attrs = append(attrs,
			"input_bytes", res.Stats.InputBytes,
			"output_bytes", res.Stats.OutputBytes,
			"elements_removed", res.Stats.TotalElementsRemoved(),
			"warnings", res.Warnings)
	}
	log.Info("converted", attrs...)
	return out, nil
}

// Compare pairs the HTML file with the description file by product id and
// serializes the comparison as "comparison_results.<ext>".
func (d *Detag) Compare(ctx context.Context, first, second Upload) (*Output, error) {
	start := time.Now()

	html, err := table.ReadBytes(first.Name, first.Data, table.ReadOptions{
		Sheet:           d.config.Sheet,
		RequiredColumns: convert.HTMLRequiredColumns,
		HeaderScanLimit: d.config.HeaderScanLimit,
		Comma:           d.config.Delimiter,
	})
	if err != nil {
		return nil, err
	}
	desc, err := table.ReadBytes(second.Name, second.Data, table.ReadOptions{
		Sheet:           d.config.Sheet,
		RequiredColumns: convert.DescriptionRequiredColumns,
		HeaderScanLimit: d.config.HeaderScanLimit,
		Comma:           d.config.Delimiter,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := convert.Compare(html, desc, d.cleaner, d.config.Compare)
	if err != nil {
		return nil, err
	}

	format := output.Resolve(d.config.Format, html.Format)
	out, err := d.write(res.Table, format, ComparisonName)
	if err != nil {
		return nil, err
	}
	out.Rows = res.Matched
	out.Unmatched = res.Unmatched
	out.Failed = res.Failed
	out.Duration = time.Since(start)

	logger.FromContext(ctx).Info("compared",
		"first", first.Name,
		"second", second.Name,
		"matched", res.Matched,
		"unmatched", res.Unmatched,
		"format", format,
		"duration", out.Duration)
	return out, nil
}

func (d *Detag) write(t *table.Table, format output.Format, name string) (*Output, error) {
	var buf bytes.Buffer
	w, err := output.NewWriter(&buf, format,
		output.WithSheet(sheetName(t.Name)),
		output.WithPretty(d.config.Indent != ""),
		output.WithIndent(d.config.Indent))
	if err != nil {
		return nil, err
	}
	if err := w.Write(t); err != nil {
		return nil, fmt.Errorf("write %s: %w", format, err)
	}
	return &Output{
		Filename:    name + output.Extension(format),
		ContentType: output.ContentType(format),
		Format:      format,
		Body:        buf.Bytes(),
	}, nil
}

// IsInvalidInput reports whether err was caused by the uploaded content or
// the request options rather than by the service.
func IsInvalidInput(err error) bool {
	return table.IsInvalidUpload(err) ||
		errors.Is(err, convert.ErrColumn) ||
		errors.Is(err, convert.ErrLayout) ||
		errors.Is(err, convert.ErrNoMatches)
}

// stem returns the base file name without its extension.
func stem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "upload"
	}
	return base
}

// sheetName derives a valid worksheet name (max 31 chars, no []:*?/\).
func sheetName(name string) string {
	s := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, stem(name))
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}
