package gridparse

import "fmt"

// Config controls synthesized break periods and the fallback time range
// used when a period header is not followed by a parsable time line.
type Config struct {
	// RecessName is the period name synthesized when no period containing
	// "recess" exists after parsing.
	RecessName  string `json:"recess_name"`
	RecessStart string `json:"recess_start"`
	RecessEnd   string `json:"recess_end"`

	LunchName  string `json:"lunch_name"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`

	// FallbackStart/FallbackEnd are assigned when no time range line can be
	// matched for a period header.
	FallbackStart string `json:"fallback_start"`
	FallbackEnd   string `json:"fallback_end"`
}

// SetDefaults applies the standard bell times.
func (c *Config) SetDefaults() {
	if c.RecessName == "" {
		c.RecessName = "Recess"
	}
	if c.RecessStart == "" {
		c.RecessStart = "10:55am"
	}
	if c.RecessEnd == "" {
		c.RecessEnd = "11:25am"
	}
	if c.LunchName == "" {
		c.LunchName = "Lunch"
	}
	if c.LunchStart == "" {
		c.LunchStart = "1:30pm"
	}
	if c.LunchEnd == "" {
		c.LunchEnd = "2:25pm"
	}
	if c.FallbackStart == "" {
		c.FallbackStart = "11:25am"
	}
	if c.FallbackEnd == "" {
		c.FallbackEnd = "12:25pm"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.RecessName == "" || c.LunchName == "" {
		return fmt.Errorf("synthesized period names are required")
	}
	for _, t := range []string{c.RecessStart, c.RecessEnd, c.LunchStart, c.LunchEnd, c.FallbackStart, c.FallbackEnd} {
		if !timeOfDayRe.MatchString(t) {
			return fmt.Errorf("invalid time %q", t)
		}
	}
	return nil
}
