package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/jmylchreest/detag/pkg/table"
)

// record is one row keyed by header, marshalled in column order.
type record struct {
	keys   []string
	values []string
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func records(t *table.Table) []record {
	k := keys(t.Header)
	out := make([]record, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = record{keys: k, values: row}
	}
	return out
}

// JSONWriter writes the table as a JSON array of objects.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write outputs every row as one array.
func (w *JSONWriter) Write(t *table.Table) error {
	var output []byte
	var err error

	if w.pretty {
		output, err = json.MarshalIndent(records(t), "", w.indent)
	} else {
		output, err = json.Marshal(records(t))
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}

	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL), one object per row.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes each row as a JSON line.
func (w *JSONLWriter) Write(t *table.Table) error {
	for _, rec := range records(t) {
		output, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.w.Write(output); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.w.Flush()
}
