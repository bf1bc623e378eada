package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/detag/pkg/cleaner/text"
)

// loadCleanerConfig reads a YAML text cleaner config on top of the defaults.
// An empty path returns nil so the cleaner keeps its own defaults.
func loadCleanerConfig(path string) (*text.Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cleaner config: %w", err)
	}
	cfg := text.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse cleaner config %s: %w", path, err)
	}
	return cfg, nil
}
