package table

import (
	"strings"

	"github.com/jmylchreest/detag/internal/logger"
)

// findHeader returns the index of the first row, within the scan limit,
// that contains every required column name. It falls back to row 0.
func findHeader(records [][]string, required []string, limit int) int {
	if len(required) == 0 {
		return 0
	}
	if limit <= 0 {
		limit = DefaultHeaderScanLimit
	}

	for idx, row := range records {
		if idx > limit {
			break
		}
		if containsAll(row, required) {
			if idx > 0 {
				logger.Debug("detected header row", "line", idx, "header", row)
			}
			return idx
		}
	}
	logger.Warn("header row not found, defaulting to first row", "required", required)
	return 0
}

func containsAll(row []string, names []string) bool {
	present := make(map[string]bool, len(row))
	for _, cell := range row {
		present[strings.TrimSpace(strings.TrimPrefix(cell, bom))] = true
	}
	for _, name := range names {
		if !present[strings.TrimSpace(name)] {
			return false
		}
	}
	return true
}
