package table

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Extensions lists the file types named in unsupported-format errors.
var Extensions = []string{".csv", ".xlsx", ".xls"}

func unsupported(what string) error {
	return fmt.Errorf("%w: %s (please upload a %s file)", ErrUnsupportedFormat, what, strings.Join(Extensions, ", "))
}

// DetectFormat picks the format from the file extension, falling back to
// content sniffing when the name carries no recognised extension.
func DetectFormat(name string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case "":
	default:
		return "", unsupported(filepath.Ext(name))
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
			return FormatXLSX, nil
		case m.Is("application/vnd.ms-excel"), m.Is("application/x-ole-storage"):
			return FormatXLS, nil
		case m.Is("text/csv"), m.Is("text/tab-separated-values"), m.Is("text/plain"):
			return FormatCSV, nil
		}
	}
	return "", unsupported("detected " + mtype.String())
}
