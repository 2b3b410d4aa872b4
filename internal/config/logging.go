package config

import (
	"fmt"

	"fmgvault/internal/logging"
)

// LoggingConfig configures the categorized diagnostic logs.
type LoggingConfig struct {
	Level      string          `yaml:"level"`                // debug, info, warn, error
	Format     string          `yaml:"format"`               // json, text
	DebugMode  bool            `yaml:"debug_mode"`           // Master toggle - false = no log files
	Categories map[string]bool `yaml:"categories,omitempty"` // Per-category toggles
}

// validateCategories rejects category toggles that no logger uses.
func (c *LoggingConfig) validateCategories() error {
	known := make(map[string]bool, len(logging.AllCategories))
	for _, cat := range logging.AllCategories {
		known[string(cat)] = true
	}
	for name := range c.Categories {
		if !known[name] {
			return fmt.Errorf("unknown logging category: %s (valid: %v)", name, logging.AllCategories)
		}
	}
	return nil
}

// Options converts the section for logging.Initialize.
func (c *LoggingConfig) Options() logging.Options {
	return logging.Options{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		JSONFormat: c.Format == "json",
		Categories: c.Categories,
	}
}
