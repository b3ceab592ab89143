package engine

import "time"

// Config contains configuration for the rule engine.
type Config struct {
	// EnrichmentTimeout bounds each enrichment service call. On timeout the
	// dispatcher proceeds with template defaults. Default: 10s
	EnrichmentTimeout time.Duration `yaml:"enrichment_timeout"`

	// DefaultCurrency is used for bills when neither enrichment nor the
	// rule's action config supplies one. Default: "USD"
	DefaultCurrency string `yaml:"default_currency"`

	// DefaultEventDuration is used for calendar events without an explicit
	// end time. Default: 60m
	DefaultEventDuration time.Duration `yaml:"default_event_duration"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		EnrichmentTimeout:    10 * time.Second,
		DefaultCurrency:      "USD",
		DefaultEventDuration: 60 * time.Minute,
	}
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if c.EnrichmentTimeout <= 0 {
		c.EnrichmentTimeout = 10 * time.Second
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = "USD"
	}
	if c.DefaultEventDuration <= 0 {
		c.DefaultEventDuration = 60 * time.Minute
	}
	return nil
}
