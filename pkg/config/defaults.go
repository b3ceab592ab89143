package config

import "time"

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = ":8085"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Rules.Backend == "" {
		cfg.Rules.Backend = "file"
	}
	if cfg.Rules.Path == "" && cfg.Rules.Backend == "file" {
		cfg.Rules.Path = "rules.yaml"
	}
	if cfg.Rules.WatchDebounce == 0 {
		cfg.Rules.WatchDebounce = 250 * time.Millisecond
	}

	if cfg.Entities.Backend == "" {
		cfg.Entities.Backend = "sqlite"
	}
	if cfg.Entities.Path == "" && cfg.Entities.Backend == "sqlite" {
		cfg.Entities.Path = "data/entities.db"
	}

	if cfg.Engine.EnrichmentTimeout == 0 {
		cfg.Engine.EnrichmentTimeout = 10 * time.Second
	}
	if cfg.Engine.DefaultCurrency == "" {
		cfg.Engine.DefaultCurrency = "USD"
	}
	if cfg.Engine.DefaultEventDuration == 0 {
		cfg.Engine.DefaultEventDuration = 60 * time.Minute
	}

	if cfg.Enrichment.Timeout == 0 {
		cfg.Enrichment.Timeout = 10 * time.Second
	}
	if cfg.Enrichment.MaxRetries == 0 {
		cfg.Enrichment.MaxRetries = 2
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = "sqlite"
	}
	if cfg.Audit.Path == "" && cfg.Audit.Backend == "sqlite" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = 1000
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = 90
	}
	if cfg.Audit.Retention.PruneSchedule == "" {
		cfg.Audit.Retention.PruneSchedule = "0 3 * * *"
	}

	if cfg.Notify.Buffer == 0 {
		cfg.Notify.Buffer = 64
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
}
