package detag

import (
	"github.com/jmylchreest/detag/internal/output"
	"github.com/jmylchreest/detag/pkg/cleaner"
	"github.com/jmylchreest/detag/pkg/cleaner/text"
	"github.com/jmylchreest/detag/pkg/convert"
)

// Config holds all detag configuration.
type Config struct {
	// Cleaning
	Cleaner       string       // cleaner name, see cleaner.Names
	CleanerConfig *text.Config // tuning for the text-based cleaners
	cleaner       cleaner.Cleaner

	// Input
	Column          convert.ColumnRef
	Sheet           string
	HeaderScanLimit int
	Delimiter       rune // CSV only; zero sniffs it

	// Output
	Format       output.Format
	OutputHeader string
	Indent       string // JSON indentation; empty writes compact JSON
	Compare      convert.CompareOptions
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Cleaner:      cleaner.NameText,
		Format:       output.FormatCSV,
		OutputHeader: convert.DefaultOutputHeader,
		Indent:       "  ",
	}
}

// Option configures detag.
type Option func(*Config)

// WithCleaner selects a built-in cleaner by name, replacing any cleaner
// injected earlier.
func WithCleaner(name string) Option {
	return func(c *Config) {
		c.Cleaner = name
		c.cleaner = nil
	}
}

// WithCleanerConfig tunes the text-based cleaners, replacing any cleaner
// injected earlier.
func WithCleanerConfig(cfg *text.Config) Option {
	return func(c *Config) {
		c.CleanerConfig = cfg
		c.cleaner = nil
	}
}

// WithCleanerInstance injects a custom cleaner, overriding Cleaner.
func WithCleanerInstance(cl cleaner.Cleaner) Option {
	return func(c *Config) {
		c.cleaner = cl
	}
}

// WithColumn selects the HTML column.
func WithColumn(col convert.ColumnRef) Option {
	return func(c *Config) {
		c.Column = col
	}
}

// WithSheet selects the worksheet of Excel uploads.
func WithSheet(name string) Option {
	return func(c *Config) {
		c.Sheet = name
	}
}

// WithHeaderScanLimit bounds the header row search in comparison mode.
func WithHeaderScanLimit(n int) Option {
	return func(c *Config) {
		c.HeaderScanLimit = n
	}
}

// WithDelimiter fixes the CSV field delimiter instead of sniffing it.
func WithDelimiter(r rune) Option {
	return func(c *Config) {
		c.Delimiter = r
	}
}

// WithIndent sets the JSON indentation. An empty string writes compact JSON.
func WithIndent(indent string) Option {
	return func(c *Config) {
		c.Indent = indent
	}
}

// WithFormat sets the output format.
func WithFormat(f output.Format) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithOutputHeader names the appended text column.
func WithOutputHeader(name string) Option {
	return func(c *Config) {
		c.OutputHeader = name
		c.Compare.OutputHeader = name
	}
}

// WithPriceHeaders names the two price columns of comparison output.
func WithPriceHeaders(first, second string) Option {
	return func(c *Config) {
		c.Compare.FirstPricesHeader = first
		c.Compare.SecondPricesHeader = second
	}
}
