package config

import "fmt"

// ExportConfig defines where and how parsed schedules are written.
type ExportConfig struct {
	// Format selects the output encoding: "json" or "csv".
	Format string `json:"format"`
	// Path is the output file location. Empty means standard output.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks mandatory fields.
func (c ExportConfig) Validate() error {
	if c.Format != "json" && c.Format != "csv" {
		return fmt.Errorf("unknown export format %s", c.Format)
	}
	return nil
}
