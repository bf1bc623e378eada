package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/detag/pkg/cleaner"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr           string   `mapstructure:"addr" validate:"required,hostname_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,required"`

	// MaxUploadSize bounds the request body, e.g. "32MB" or "10MiB".
	MaxUploadSize string `mapstructure:"max_upload_size" validate:"required"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	// Conversion defaults; requests may override the format and column.
	Cleaner string `mapstructure:"cleaner" validate:"omitempty,cleaner"`
	Format  string `mapstructure:"format" validate:"omitempty,oneof=csv xlsx json jsonl yaml same"`

	// HeaderScanLimit bounds the header row search of comparison uploads.
	HeaderScanLimit int `mapstructure:"header_scan_limit" validate:"gte=0"`
	// PriceHeaders renames the two price columns of comparison output.
	PriceHeaders []string `mapstructure:"price_headers" validate:"omitempty,len=2,dive,required"`

	// HistoryDB is a SQLite path for the job log. Empty disables it.
	HistoryDB        string        `mapstructure:"history_db"`
	HistoryRetention time.Duration `mapstructure:"history_retention" validate:"gte=0"`

	maxUploadBytes int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            "0.0.0.0:8000",
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxUploadSize:   "32MB",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Cleaner:         "text",
		Format:          "csv",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cleaner", func(fl validator.FieldLevel) bool {
		_, err := cleaner.New(fl.Field().String(), nil)
		return err == nil
	})
	return v
}

// Validate checks the configuration and resolves derived values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid server config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid server config: %w", err)
	}

	n, err := humanize.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid server config: max_upload_size %q: %w", c.MaxUploadSize, err)
	}
	if n == 0 {
		return fmt.Errorf("invalid server config: max_upload_size must be positive")
	}
	c.maxUploadBytes = int64(n)
	return nil
}

// MaxUploadBytes returns the parsed upload limit. Validate must be called first.
func (c *Config) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}
