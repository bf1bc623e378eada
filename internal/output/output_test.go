package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/detag/pkg/table"
)

func sample() *table.Table {
	return &table.Table{
		Name:   "products",
		Format: table.FormatCSV,
		Header: []string{"html", "sku", "Natural Language Output"},
		Rows: [][]string{
			{"<p>Hello <b>World</b></p>", "A1", "Hello World"},
			{"<div>A &amp; B</div>", "A,2", "A & B"},
		},
	}
}

// --- NewWriter Factory Tests ---

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatCSV, "*output.CSVWriter"},
		{FormatXLSX, "*output.XLSXWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if got := typeName(w); got != tt.want {
				t.Errorf("NewWriter(%s) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(w Writer) string {
	switch w.(type) {
	case *CSVWriter:
		return "*output.CSVWriter"
	case *XLSXWriter:
		return "*output.XLSXWriter"
	case *JSONWriter:
		return "*output.JSONWriter"
	case *JSONLWriter:
		return "*output.JSONLWriter"
	case *YAMLWriter:
		return "*output.YAMLWriter"
	}
	return "unknown"
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	for _, f := range []Format{"unsupported", FormatSame} {
		_, err := NewWriter(&bytes.Buffer{}, f)
		if err == nil || !strings.Contains(err.Error(), "unsupported") {
			t.Errorf("NewWriter(%q) error = %v, want unsupported", f, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"same", FormatSame, false},
		{"xls", "", true},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		f    Format
		in   table.Format
		want Format
	}{
		{FormatSame, table.FormatCSV, FormatCSV},
		{FormatSame, table.FormatXLSX, FormatXLSX},
		{FormatSame, table.FormatXLS, FormatXLSX},
		{FormatJSON, table.FormatXLSX, FormatJSON},
	}
	for _, tt := range tests {
		if got := Resolve(tt.f, tt.in); got != tt.want {
			t.Errorf("Resolve(%s, %s) = %s, want %s", tt.f, tt.in, got, tt.want)
		}
	}
}

func TestContentTypeAndExtension(t *testing.T) {
	tests := []struct {
		f     Format
		ctype string
		ext   string
	}{
		{FormatCSV, "text/csv", ".csv"},
		{FormatXLSX, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
		{FormatJSON, "application/json", ".json"},
		{FormatJSONL, "application/x-ndjson", ".jsonl"},
		{FormatYAML, "application/yaml", ".yaml"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.f); got != tt.ctype {
			t.Errorf("ContentType(%s) = %q, want %q", tt.f, got, tt.ctype)
		}
		if got := Extension(tt.f); got != tt.ext {
			t.Errorf("Extension(%s) = %q, want %q", tt.f, got, tt.ext)
		}
	}
}

// --- Writer Tests ---

func TestCSVWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewCSVWriter(buf).Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[2][1] != "A,2" || records[2][2] != "A & B" {
		t.Errorf("unexpected row: %v", records[2])
	}
}

func TestXLSXWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewXLSXWriter(buf, "Results").Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][2] != "Natural Language Output" || rows[1][2] != "Hello World" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestJSONWriter_KeepsColumnOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewJSONWriter(buf, false, "").Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, `[{"html":`) {
		t.Errorf("expected html key first, got %s", out)
	}

	var result []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 || result[1]["Natural Language Output"] != "A & B" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_PrettyPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewJSONWriter(buf, true, "  ").Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("expected indentation in pretty output: %s", buf.String())
	}
}

func TestJSONWriter_EmptyTable(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewJSONWriter(buf, false, "").Write(&table.Table{Header: []string{"a"}}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("got %q, want []", got)
	}
}

func TestJSONLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewJSONLWriter(buf).Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var row map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &row); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if row["sku"] != "A1" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestYAMLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewYAMLWriter(buf).Write(sample()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var result []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 || result[0]["Natural Language Output"] != "Hello World" {
		t.Errorf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(buf.String(), "- html:") {
		t.Errorf("expected html key first, got %s", buf.String())
	}
}

func TestKeys(t *testing.T) {
	got := keys([]string{"a", "b", "a", "a", "a.1"})
	want := []string{"a", "b", "a.1", "a.2", "a.1.1"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
