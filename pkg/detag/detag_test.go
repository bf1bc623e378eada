package detag

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/pkg/cleaner"
	"github.com/jmylchreest/detag/pkg/convert"
	"github.com/jmylchreest/detag/pkg/table"
)

const productsCSV = "html,sku\n\"<p>Hello <b>World</b></p>\",A1\n<div>A &amp; B</div>,A2\n"

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	return records
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		d, err := New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		cfg := d.Config()
		if cfg.Cleaner != cleaner.NameText || cfg.Format != output.FormatCSV {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("unknown cleaner", func(t *testing.T) {
		if _, err := New(WithCleaner("markdown")); err == nil {
			t.Error("expected error for unknown cleaner")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := New(WithFormat("pdf")); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestConvert(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}

	out, err := d.Convert(context.Background(), Upload{Name: "products.csv", Data: []byte(productsCSV)})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.Filename != "products_text.csv" {
		t.Errorf("Filename = %q", out.Filename)
	}
	if out.ContentType != "text/csv" || out.Rows != 2 {
		t.Errorf("ContentType/Rows = %q/%d", out.ContentType, out.Rows)
	}

	records := readCSV(t, out.Body)
	want := [][]string{
		{"html", "sku", "Natural Language Output"},
		{"<p>Hello <b>World</b></p>", "A1", "Hello World"},
		{"<div>A &amp; B</div>", "A2", "A & B"},
	}
	for i, row := range want {
		if strings.Join(records[i], "|") != strings.Join(row, "|") {
			t.Errorf("record %d = %v, want %v", i, records[i], row)
		}
	}
}

func TestConvert_FormatSame(t *testing.T) {
	d, err := New(WithFormat(output.FormatSame))
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Convert(context.Background(), Upload{Name: `C:\exports\items.csv`, Data: []byte(productsCSV)})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out.Filename != "items_text.csv" || out.Format != output.FormatCSV {
		t.Errorf("Filename/Format = %q/%q", out.Filename, out.Format)
	}
}

func TestConvert_InvalidInput(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		up   Upload
		opts []Option
	}{
		{name: "empty", up: Upload{Name: "a.csv"}},
		{name: "header only", up: Upload{Name: "a.csv", Data: []byte("html\n")}},
		{name: "ragged", up: Upload{Name: "a.csv", Data: []byte("a\n1,2\n")}},
		{name: "bad format", up: Upload{Name: "a.pdf", Data: []byte("%PDF-1.4\x00\x01")}},
		{name: "bad column", up: Upload{Name: "a.csv", Data: []byte(productsCSV)}, opts: []Option{WithColumn(convert.ColumnRef{Index: 7})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dd, err := d.With(tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			out, err := dd.Convert(context.Background(), tt.up)
			if err == nil {
				t.Fatal("expected error")
			}
			if out != nil {
				t.Error("expected no output on error")
			}
			if !IsInvalidInput(err) {
				t.Errorf("IsInvalidInput(%v) = false", err)
			}
			if err.Error() == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestConvert_CancelledContext(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Convert(ctx, Upload{Name: "a.csv", Data: []byte(productsCSV)}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCompare(t *testing.T) {
	first := Upload{Name: "lazada.csv", Data: []byte("Report,\nProduct ID,HTML\nP1,<p>Red shirt <b>$50</b></p>\nP2,<p>Gone</p>\n")}
	second := Upload{Name: "shopee.csv", Data: []byte("Name,Product ID,Stock,Product Description\nshirt,P1,4,Red shirt $45\n")}

	d, err := New()
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Compare(context.Background(), first, second)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if out.Filename != "comparison_results.csv" {
		t.Errorf("Filename = %q", out.Filename)
	}
	if out.Rows != 1 || out.Unmatched != 1 {
		t.Errorf("Rows/Unmatched = %d/%d, want 1/1", out.Rows, out.Unmatched)
	}

	records := readCSV(t, out.Body)
	want := []string{"P1", "Red shirt $50", "Red shirt $45", "-$50 +$45", "$50", "$45"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Errorf("row = %v, want %v", records[1], want)
	}
}

func TestCompare_NoMatches(t *testing.T) {
	first := Upload{Name: "a.csv", Data: []byte("Product ID,HTML\nP1,<p>x</p>\n")}
	second := Upload{Name: "b.csv", Data: []byte("Name,Product ID,Stock,Product Description\nx,P9,1,y\n")}

	d, err := New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.Compare(context.Background(), first, second)
	if !errors.Is(err, convert.ErrNoMatches) || !IsInvalidInput(err) {
		t.Errorf("error = %v, want ErrNoMatches", err)
	}
}

func TestWith_KeepsCleaner(t *testing.T) {
	d, err := New(WithCleanerInstance(cleaner.NewNoop()))
	if err != nil {
		t.Fatal(err)
	}
	dd, err := d.With(WithFormat(output.FormatJSON))
	if err != nil {
		t.Fatal(err)
	}
	out, err := dd.Convert(context.Background(), Upload{Name: "a.csv", Data: []byte("h\n<b>x</b>\n")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out.Body), `\u003cb\u003ex\u003c/b\u003e`) || out.Filename != "a_text.json" {
		t.Errorf("unexpected output %s (%s)", out.Body, out.Filename)
	}
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"products.csv":          "products",
		"dir/report.final.xlsx": "report.final",
		`C:\x\y.xls`:            "y",
		"":                      "upload",
		"noext":                 "noext",
	}
	for in, want := range tests {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsInvalidInput(t *testing.T) {
	if IsInvalidInput(errors.New("disk full")) {
		t.Error("plain error reported as invalid input")
	}
	if !IsInvalidInput(table.ErrNoRows) {
		t.Error("ErrNoRows not reported as invalid input")
	}
}

func TestWith_NamedCleanerReplacesInstance(t *testing.T) {
	d, err := New(WithCleanerInstance(cleaner.NewNoop()))
	if err != nil {
		t.Fatal(err)
	}
	dd, err := d.With(WithCleaner(cleaner.NameText))
	if err != nil {
		t.Fatal(err)
	}
	out, err := dd.Convert(context.Background(), Upload{Name: "a.csv", Data: []byte("h\n<b>x</b>\n")})
	if err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, out.Body)
	if got := records[1][1]; got != "x" {
		t.Errorf("text = %q, want %q from the text cleaner", got, "x")
	}
	if out.Stats == nil {
		t.Error("Stats = nil, want text cleaner totals")
	}
}

func TestConvert_Options(t *testing.T) {
	tests := []struct {
		name  string
		up    Upload
		opts  []Option
		check func(t *testing.T, out *Output)
	}{
		{
			name: "tab delimiter",
			up:   Upload{Name: "a.csv", Data: []byte("html\tsku\n<b>a, b</b>\tA1\n")},
			opts: []Option{WithDelimiter('\t')},
			check: func(t *testing.T, out *Output) {
				records := readCSV(t, out.Body)
				want := []string{"<b>a, b</b>", "A1", "a, b"}
				if strings.Join(records[1], "|") != strings.Join(want, "|") {
					t.Errorf("row = %v, want %v", records[1], want)
				}
			},
		},
		{
			name: "compact json",
			up:   Upload{Name: "a.csv", Data: []byte(productsCSV)},
			opts: []Option{WithFormat(output.FormatJSON), WithIndent("")},
			check: func(t *testing.T, out *Output) {
				if strings.Contains(string(out.Body), "\n ") {
					t.Errorf("body is indented:\n%s", out.Body)
				}
			},
		},
		{
			name: "indented json",
			up:   Upload{Name: "a.csv", Data: []byte(productsCSV)},
			opts: []Option{WithFormat(output.FormatJSON), WithIndent("\t")},
			check: func(t *testing.T, out *Output) {
				if !strings.Contains(string(out.Body), "\n\t") {
					t.Errorf("body is not tab indented:\n%s", out.Body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			out, err := d.Convert(context.Background(), tt.up)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			tt.check(t, out)
		})
	}
}

func TestCompare_PriceHeaders(t *testing.T) {
	first := Upload{Name: "lazada.csv", Data: []byte("Product ID,HTML\nP1,<p>Red shirt <b>$50</b></p>\n")}
	second := Upload{Name: "shopee.csv", Data: []byte("Name,Product ID,Stock,Product Description\nshirt,P1,4,Red shirt $45\n")}

	d, err := New(WithPriceHeaders("Lazada Prices", "Shopee Prices"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Compare(context.Background(), first, second)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	header := readCSV(t, out.Body)[0]
	if header[4] != "Lazada Prices" || header[5] != "Shopee Prices" {
		t.Errorf("header = %v", header)
	}
}

func TestCompare_HeaderScanLimit(t *testing.T) {
	first := Upload{Name: "lazada.csv", Data: []byte("Report,\nBy team,\nProduct ID,HTML\nP1,<p>Red</p>\n")}
	second := Upload{Name: "shopee.csv", Data: []byte("Name,Product ID,Stock,Product Description\nshirt,P1,4,Red\n")}

	tests := []struct {
		name          string
		limit         int
		wantUnmatched int
	}{
		{name: "default finds the header", limit: 0, wantUnmatched: 0},
		{name: "limit stops before the header", limit: 1, wantUnmatched: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(WithHeaderScanLimit(tt.limit))
			if err != nil {
				t.Fatal(err)
			}
			out, err := d.Compare(context.Background(), first, second)
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if out.Rows != 1 || out.Unmatched != tt.wantUnmatched {
				t.Errorf("Rows/Unmatched = %d/%d, want 1/%d", out.Rows, out.Unmatched, tt.wantUnmatched)
			}
		})
	}
}
