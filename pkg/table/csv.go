package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const bom = "\xef\xbb\xbf"

// readCSV decodes data as UTF-8 (or Windows-1252 when it is not valid UTF-8)
// and returns the raw records. Field counts are checked later, once the
// header row is known.
func readCSV(data []byte, comma rune) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte(bom))
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	if comma == 0 {
		comma = sniffComma(data)
	}

	records, err := parseCSV(data, comma, false)
	if errors.Is(err, csv.ErrBareQuote) {
		// Unquoted HTML cells routinely carry attribute quotes.
		records, err = parseCSV(data, comma, true)
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, &ParseError{Line: perr.Line, Err: perr.Err}
		}
		return nil, err
	}
	return records, nil
}

func parseCSV(data []byte, comma rune, lazy bool) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = lazy
	return r.ReadAll()
}

// ParseDelimiter reads a CSV delimiter given as a single character, "tab" or
// `\t`. The empty string yields zero, which sniffs the delimiter.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q: want a single character", s)
	}
	return r, nil
}

// sniffComma picks the most frequent of ',', ';' and tab on the first line.
func sniffComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
