package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and TRITON_*
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies TRITON_SECTION_FIELD environment overrides.
// Environment variables always win over file values.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("TRITON_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("TRITON_RULES_BACKEND"); val != "" {
		cfg.Rules.Backend = val
	}
	if val := os.Getenv("TRITON_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("TRITON_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}
	if val := os.Getenv("TRITON_ENTITIES_BACKEND"); val != "" {
		cfg.Entities.Backend = val
	}
	if val := os.Getenv("TRITON_ENTITIES_PATH"); val != "" {
		cfg.Entities.Path = val
	}
	if val := os.Getenv("TRITON_ENGINE_DEFAULT_CURRENCY"); val != "" {
		cfg.Engine.DefaultCurrency = val
	}
	if val := os.Getenv("TRITON_ENGINE_ENRICHMENT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.EnrichmentTimeout = d
		}
	}
	if val := os.Getenv("TRITON_ENRICHMENT_BASE_URL"); val != "" {
		cfg.Enrichment.BaseURL = val
	}
	if val := os.Getenv("TRITON_ENRICHMENT_API_KEY"); val != "" {
		cfg.Enrichment.APIKey = val
	}
	if val := os.Getenv("TRITON_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("TRITON_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("TRITON_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("TRITON_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TRITON_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TRITON_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
