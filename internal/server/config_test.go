package server

import (
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port only", mutate: func(c *Config) { c.Addr = ":9000" }},
		{name: "missing addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: "Addr"},
		{name: "bad addr", mutate: func(c *Config) { c.Addr = "localhost" }, wantErr: "hostname_port"},
		{name: "bad size", mutate: func(c *Config) { c.MaxUploadSize = "lots" }, wantErr: "max_upload_size"},
		{name: "zero size", mutate: func(c *Config) { c.MaxUploadSize = "0B" }, wantErr: "positive"},
		{name: "zero timeout", mutate: func(c *Config) { c.ReadTimeout = 0 }, wantErr: "ReadTimeout"},
		{name: "unknown cleaner", mutate: func(c *Config) { c.Cleaner = "markdown" }, wantErr: `"cleaner"`},
		{name: "cleaner chain", mutate: func(c *Config) { c.Cleaner = "sanitize,text" }},
		{name: "bad cleaner chain", mutate: func(c *Config) { c.Cleaner = "sanitize,markdown" }, wantErr: `"cleaner"`},
		{name: "negative scan limit", mutate: func(c *Config) { c.HeaderScanLimit = -1 }, wantErr: "HeaderScanLimit"},
		{name: "price headers", mutate: func(c *Config) { c.PriceHeaders = []string{"A", "B"} }},
		{name: "one price header", mutate: func(c *Config) { c.PriceHeaders = []string{"A"} }, wantErr: "PriceHeaders"},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "pdf" }, wantErr: "oneof"},
		{name: "blank origin", mutate: func(c *Config) { c.AllowedOrigins = []string{""} }, wantErr: "AllowedOrigins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMaxUploadBytes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadSize = "10MiB"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if got := cfg.MaxUploadBytes(); got != 10<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", got, 10<<20)
	}
}
