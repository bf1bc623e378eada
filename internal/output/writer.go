// Package output serializes converted tables.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmylchreest/detag/pkg/table"
)

// Format represents output format types.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"

	// FormatSame writes the upload's own format back (xls becomes xlsx).
	FormatSame Format = "same"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatCSV, FormatXLSX, FormatJSON, FormatJSONL, FormatYAML, FormatSame}

// Writer serializes a whole table.
type Writer interface {
	Write(t *table.Table) error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	sheet  string
}

// WithPretty enables pretty-printing of JSON.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithSheet names the worksheet written by the xlsx writer.
func WithSheet(name string) WriterOption {
	return func(c *writerConfig) {
		c.sheet = name
	}
}

// NewWriter creates a writer for the specified format. FormatSame must be
// resolved with Resolve first.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
		sheet:  "Sheet1",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatXLSX:
		return NewXLSXWriter(w, cfg.sheet), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ParseFormat validates a format name. The empty string means csv.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatCSV, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Resolve maps FormatSame onto a concrete format for an input of kind in.
func Resolve(f Format, in table.Format) Format {
	if f != FormatSame {
		return f
	}
	if in == table.FormatCSV {
		return FormatCSV
	}
	return FormatXLSX
}

// ContentType returns the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatJSONL:
		return "application/x-ndjson"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension for f, with the leading dot.
func Extension(f Format) string {
	switch f {
	case FormatXLSX, FormatJSON, FormatJSONL, FormatYAML:
		return "." + string(f)
	default:
		return ".csv"
	}
}

// keys returns the header made unique by suffixing repeats with ".1", ".2"
// and so on, so that keyed formats keep every column.
func keys(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	for i, h := range header {
		k := h
		for used[k] {
			repeats[h]++
			k = h + "." + strconv.Itoa(repeats[h])
		}
		used[k] = true
		out[i] = k
	}
	return out
}
