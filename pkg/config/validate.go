package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

// Error returns the combined message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the configuration for inconsistencies. Defaults must be
// applied first.
func Validate(cfg *Config) error {
	var problems []string

	switch cfg.Rules.Backend {
	case "file", "sqlite", "memory":
	default:
		problems = append(problems, fmt.Sprintf("rules.backend must be file, sqlite or memory, got %q", cfg.Rules.Backend))
	}
	if cfg.Rules.Backend != "memory" && cfg.Rules.Path == "" {
		problems = append(problems, "rules.path is required for the "+cfg.Rules.Backend+" backend")
	}
	if cfg.Rules.Watch && cfg.Rules.Backend != "file" {
		problems = append(problems, "rules.watch requires the file backend")
	}

	switch cfg.Entities.Backend {
	case "sqlite", "memory":
	default:
		problems = append(problems, fmt.Sprintf("entities.backend must be sqlite or memory, got %q", cfg.Entities.Backend))
	}
	if cfg.Entities.Backend == "sqlite" && cfg.Entities.Path == "" {
		problems = append(problems, "entities.path is required for the sqlite backend")
	}

	switch cfg.Audit.Backend {
	case "sqlite", "memory":
	default:
		problems = append(problems, fmt.Sprintf("audit.backend must be sqlite or memory, got %q", cfg.Audit.Backend))
	}
	if cfg.Audit.Backend == "sqlite" && cfg.Audit.Path == "" {
		problems = append(problems, "audit.path is required for the sqlite backend")
	}
	if cfg.Audit.Retention.Days < 0 {
		problems = append(problems, "audit.retention.days must not be negative")
	}
	if cfg.Audit.Retention.MaxRecords < 0 {
		problems = append(problems, "audit.retention.max_records must not be negative")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level must be debug, info, warn or error, got %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format must be json or text, got %q", cfg.Telemetry.Logging.Format))
	}

	if cfg.Engine.EnrichmentTimeout <= 0 {
		problems = append(problems, "engine.enrichment_timeout must be positive")
	}
	if cfg.Enrichment.MaxRetries < 0 {
		problems = append(problems, "enrichment.max_retries must not be negative")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
