package table

import (
	"errors"
	"fmt"
)

// ErrEmpty indicates the upload has no content or no header row.
var ErrEmpty = errors.New("file is empty")

// ErrNoRows indicates the upload has a header but no data rows.
var ErrNoRows = errors.New("file has no data rows")

// ErrUnsupportedFormat indicates the upload is not CSV, XLSX or XLS.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError represents a malformed upload.
type ParseError struct {
	File string
	Line int // 1-based source row, zero when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("error reading file %s: line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("error reading file %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsInvalidUpload reports whether err was caused by the uploaded content
// rather than by the service.
func IsInvalidUpload(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrEmpty) ||
		errors.Is(err, ErrNoRows) ||
		errors.Is(err, ErrUnsupportedFormat)
}

func wrapParseError(name string, err error) error {
	if errors.Is(err, ErrEmpty) || errors.Is(err, ErrNoRows) {
		return fmt.Errorf("%s: %w", name, err)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.File == "" {
			pe.File = name
		}
		return pe
	}
	return &ParseError{File: name, Err: err}
}
