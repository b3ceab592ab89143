package config

import "time"

// Config is the root configuration for the triton daemon.
type Config struct {
	// Server configures the HTTP ingest listener.
	Server ServerConfig `yaml:"server"`

	// Rules configures where automation rules come from.
	Rules RulesConfig `yaml:"rules"`

	// Entities configures derived-record storage.
	Entities EntitiesConfig `yaml:"entities"`

	// Engine configures evaluation and dispatch behavior.
	Engine EngineConfig `yaml:"engine"`

	// Enrichment configures the external text extraction service.
	Enrichment EnrichmentConfig `yaml:"enrichment"`

	// Audit configures execution record storage and retention.
	Audit AuditConfig `yaml:"audit"`

	// Notify configures notification fan-out.
	Notify NotifyConfig `yaml:"notify"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener that accepts trigger events.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RulesConfig configures the rule source.
type RulesConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the rule file or directory for the file backend, or the
	// database path for the sqlite backend.
	Path string `yaml:"path"`

	// Watch reloads file-backed rules when the file changes.
	Watch bool `yaml:"watch"`

	// WatchDebounce coalesces bursts of file events into one reload.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// EntitiesConfig configures derived-record storage.
type EntitiesConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the SQLite database path.
	Path string `yaml:"path"`
}

// EngineConfig configures evaluation and dispatch.
type EngineConfig struct {
	EnrichmentTimeout    time.Duration `yaml:"enrichment_timeout"`
	DefaultCurrency      string        `yaml:"default_currency"`
	DefaultEventDuration time.Duration `yaml:"default_event_duration"`
}

// EnrichmentConfig configures the text extraction client. An empty BaseURL
// disables enrichment entirely.
type EnrichmentConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// AuditConfig configures execution record storage and retention.
type AuditConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// Path is the SQLite database path for the sqlite backend.
	Path string `yaml:"path"`

	// AsyncBuffer sizes the logger's write channel.
	AsyncBuffer int `yaml:"async_buffer"`

	// Retention configures pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig configures audit record pruning.
type RetentionConfig struct {
	Days          int    `yaml:"days"`
	MaxRecords    int64  `yaml:"max_records"`
	PruneSchedule string `yaml:"prune_schedule"`
}

// NotifyConfig configures notification fan-out.
type NotifyConfig struct {
	// Buffer sizes each subscriber channel.
	Buffer int `yaml:"buffer"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}
