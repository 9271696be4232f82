package config

import (
	"fmt"

	"github.com/kilianp07/timetable/core/orchestrate"
)

// LLMConfig defines the generation endpoint and the candidate lists the
// orchestrator walks.
type LLMConfig struct {
	BaseURL        string   `json:"base_url"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Models         []string `json:"models"`
	Credentials    []string `json:"credentials"`
	MaxTokens      int      `json:"max_tokens"`
	Temperature    float64  `json:"temperature"`
}

// SetDefaults applies sane defaults.
func (c *LLMConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks mandatory fields. The candidate lists may be empty when
// only the deterministic grid import is used.
func (c LLMConfig) Validate() error {
	if len(c.Models) > 0 || len(c.Credentials) > 0 {
		if c.BaseURL == "" {
			return fmt.Errorf("base_url is required when models are configured")
		}
		if len(c.Models) == 0 {
			return fmt.Errorf("at least one model is required when credentials are configured")
		}
		if len(c.Credentials) == 0 {
			return fmt.Errorf("at least one credential is required when models are configured")
		}
	}
	return nil
}

// Enabled reports whether the generation import path is configured.
func (c LLMConfig) Enabled() bool {
	return c.BaseURL != "" && len(c.Models) > 0 && len(c.Credentials) > 0
}

// Orchestrate maps the section to the orchestrator configuration.
func (c LLMConfig) Orchestrate() orchestrate.Config {
	return orchestrate.Config{
		Models:      c.Models,
		Credentials: c.Credentials,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}
