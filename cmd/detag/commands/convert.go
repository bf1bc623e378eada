package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/pkg/convert"
	"github.com/jmylchreest/detag/pkg/detag"
	"github.com/jmylchreest/detag/pkg/table"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE [DESCRIPTIONS]",
	Short: "Convert a file locally without a server",
	Long: `Convert the HTML column of a CSV or Excel file into plain text.

With a second file, run the comparison instead: FILE must hold "Product ID"
and the HTML, DESCRIPTIONS must hold "Product ID" and "Product Description".

Examples:
  detag convert products.csv
  detag convert products.xlsx --column 2 --format json -o -
  detag convert lazada.xlsx shopee.xlsx -o results/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("output", "o", "", "output file or directory, - for stdout (default: next to FILE)")
	flags.StringP("format", "f", string(output.FormatCSV), "output format: csv, xlsx, json, jsonl, yaml, same")
	flags.StringP("column", "c", "", "HTML column by header name or 0-based index (default: first column)")
	flags.String("cleaner", "text", "cleaner: text, strict, sanitize, html2text, noop")
	flags.String("cleaner-config", "", "YAML file tuning the text cleaner")
	flags.String("sheet", "", "worksheet of Excel inputs (default: first sheet)")
	flags.String("output-header", convert.DefaultOutputHeader, "name of the appended text column")
	flags.String("delimiter", "", "CSV delimiter, a single character or \"tab\" (default: sniffed)")
	flags.Int("header-scan-limit", table.DefaultHeaderScanLimit, "leading rows searched for the header row")
	flags.StringSlice("price-headers", nil, "names of the two price columns of comparison output")
	flags.String("indent", "  ", "JSON indentation, empty for compact output")
	flags.Bool("stats", false, "print cleaner statistics after converting")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	flags := cmd.Flags()
	outPath, _ := flags.GetString("output")
	format, _ := flags.GetString("format")
	column, _ := flags.GetString("column")
	cleanerName, _ := flags.GetString("cleaner")
	cleanerCfgPath, _ := flags.GetString("cleaner-config")
	sheet, _ := flags.GetString("sheet")
	header, _ := flags.GetString("output-header")
	delimiter, _ := flags.GetString("delimiter")
	scanLimit, _ := flags.GetInt("header-scan-limit")
	priceHeaders, _ := flags.GetStringSlice("price-headers")
	indent, _ := flags.GetString("indent")
	showStats, _ := flags.GetBool("stats")

	cleanerCfg, err := loadCleanerConfig(cleanerCfgPath)
	if err != nil {
		logError("%v", err)
		return err
	}
	comma, err := table.ParseDelimiter(delimiter)
	if err != nil {
		logError("%v", err)
		return err
	}
	if len(priceHeaders) != 0 && len(priceHeaders) != 2 {
		err := fmt.Errorf("--price-headers wants two names, got %d", len(priceHeaders))
		logError("%v", err)
		return err
	}

	opts := []detag.Option{
		detag.WithCleaner(cleanerName),
		detag.WithCleanerConfig(cleanerCfg),
		detag.WithFormat(output.Format(format)),
		detag.WithColumn(convert.ParseColumnRef(column)),
		detag.WithSheet(sheet),
		detag.WithOutputHeader(header),
		detag.WithDelimiter(comma),
		detag.WithHeaderScanLimit(scanLimit),
		detag.WithIndent(indent),
	}
	if len(priceHeaders) == 2 {
		opts = append(opts, detag.WithPriceHeaders(priceHeaders[0], priceHeaders[1]))
	}

	d, err := detag.New(opts...)
	if err != nil {
		logError("%v", err)
		return err
	}

	first, err := readUpload(args[0])
	if err != nil {
		logError("%v", err)
		return err
	}

	var out *detag.Output
	if len(args) == 2 {
		second, err := readUpload(args[1])
		if err != nil {
			logError("%v", err)
			return err
		}
		out, err = d.Compare(ctx, first, second)
		if err != nil {
			logError("%v", err)
			return err
		}
	} else {
		out, err = d.Convert(ctx, first)
		if err != nil {
			logError("%v", err)
			return err
		}
	}

	if showStats && out.Stats != nil {
		logInfo("%s", strings.TrimSpace(out.Stats.String()))
		if out.Warnings > 0 {
			logInfo("%d cleaner warnings", out.Warnings)
		}
	}

	if outPath == "-" {
		_, err := cmd.OutOrStdout().Write(out.Body)
		return err
	}

	path, err := writeOutput(out, outPath, filepath.Dir(args[0]))
	if err != nil {
		logError("%v", err)
		return err
	}

	if len(args) == 2 {
		logInfo("Compared %d rows (%d unmatched, %d failed) in %s", out.Rows, out.Unmatched, out.Failed, out.Duration.Round(1e6))
	} else {
		logInfo("Converted %d rows in %s", out.Rows, out.Duration.Round(1e6))
	}
	logInfo("Wrote %s (%s)", path, humanize.Bytes(uint64(len(out.Body))))
	return nil
}

func readUpload(path string) (detag.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return detag.Upload{}, err
	}
	return detag.Upload{Name: filepath.Base(path), Data: data}, nil
}

// writeOutput writes out to target. An existing directory, or a target
// ending in a separator, receives the output under its own file name. An
// empty target falls back to defaultDir.
func writeOutput(out *detag.Output, target, defaultDir string) (string, error) {
	path := target
	switch {
	case target == "":
		path = filepath.Join(defaultDir, out.Filename)
	case os.IsPathSeparator(target[len(target)-1]):
		path = filepath.Join(target, out.Filename)
	default:
		if fi, err := os.Stat(target); err == nil && fi.IsDir() {
			path = filepath.Join(target, out.Filename)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, out.Body, 0o644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}
	return path, nil
}
