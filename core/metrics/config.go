package metrics

import "fmt"

// InfluxConfig holds the connection settings for the InfluxDB sink.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// Config defines settings for metrics sinks.
type Config struct {
	Prometheus bool         `json:"prometheus"`
	Influx     InfluxConfig `json:"influx"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	// Prometheus collectors are cheap; record locally unless disabled.
	if !c.Prometheus && !c.Influx.Enabled {
		c.Prometheus = true
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Influx.Enabled {
		if c.Influx.URL == "" {
			return fmt.Errorf("influx url is required when the influx sink is enabled")
		}
		if c.Influx.Org == "" || c.Influx.Bucket == "" {
			return fmt.Errorf("influx org and bucket are required when the influx sink is enabled")
		}
	}
	return nil
}
