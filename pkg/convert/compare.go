package convert

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/pkg/cleaner"
	"github.com/jmylchreest/detag/pkg/table"
)

var (
	// ErrLayout indicates an upload does not have the columns comparison needs.
	ErrLayout = errors.New("invalid file layout")

	// ErrNoMatches is returned when no row of the first file has a
	// counterpart in the second.
	ErrNoMatches = errors.New("No data was processed successfully")
)

// Required header names used to locate the header row of each comparison input.
var (
	HTMLRequiredColumns        = []string{"Product ID"}
	DescriptionRequiredColumns = []string{"Product ID", "Product Description"}
)

// Comparison output headers.
const (
	HeaderProductNumber      = "Product Number"
	HeaderProductDescription = "Product Description"
	HeaderDifferences        = "Differences"
	DefaultFirstPricesLabel  = "LAZADA PRICES"
	DefaultSecondPricesLabel = "SHOPEE PRICES"
)

// CompareOptions configures Compare. Empty fields take the defaults.
type CompareOptions struct {
	OutputHeader       string
	FirstPricesHeader  string
	SecondPricesHeader string
}

func (o CompareOptions) headers() []string {
	return []string{
		HeaderProductNumber,
		coalesce(o.OutputHeader, DefaultOutputHeader),
		HeaderProductDescription,
		HeaderDifferences,
		coalesce(o.FirstPricesHeader, DefaultFirstPricesLabel),
		coalesce(o.SecondPricesHeader, DefaultSecondPricesLabel),
	}
}

// CompareResult is the comparison table plus per-row counters.
type CompareResult struct {
	Table     *table.Table
	Matched   int
	Unmatched int
	Failed    int
	Duration  time.Duration
}

// Compare converts the HTML column (index 1) of the first table and pairs
// each row with the description (index 3) of the first row in the second
// table whose product id (index 1) equals the first table's id (index 0).
// Rows without a counterpart are skipped.
func Compare(html, desc *table.Table, cl cleaner.Cleaner, opts CompareOptions) (*CompareResult, error) {
	start := time.Now()
	if html == nil || html.Width() < 2 {
		return nil, fmt.Errorf("%w: First file must have at least 2 columns (product number and HTML content)", ErrLayout)
	}
	if desc == nil || desc.Width() < 4 {
		return nil, fmt.Errorf("%w: Second file must have at least 4 columns (product number and description in 4th column)", ErrLayout)
	}

	descriptions := make(map[string]string, desc.Len())
	for _, row := range desc.Rows {
		id := strings.TrimSpace(row[1])
		if _, seen := descriptions[id]; !seen {
			descriptions[id] = row[3]
		}
	}

	out := &table.Table{
		Name:   "comparison_results",
		Format: html.Format,
		Header: opts.headers(),
	}
	res := &CompareResult{Table: out}

	for i, row := range html.Rows {
		id := row[0]
		description, ok := descriptions[strings.TrimSpace(id)]
		if !ok {
			logger.Warn("no matching product", "product", id, "row", i+1)
			res.Unmatched++
			continue
		}
		text, err := cl.Clean(row[1])
		if err != nil {
			logger.Error("row failed", "row", i+1, "cleaner", cl.Name(), "error", err)
			res.Failed++
			continue
		}
		out.Rows = append(out.Rows, []string{
			id,
			text,
			description,
			Differences(text, description),
			ExtractPrices(text),
			ExtractPrices(description),
		})
		res.Matched++
	}

	res.Duration = time.Since(start)
	if res.Matched == 0 {
		return nil, ErrNoMatches
	}
	logger.Info("comparison complete",
		"matched", res.Matched,
		"unmatched", res.Unmatched,
		"failed", res.Failed,
		"duration", res.Duration)
	return res, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
