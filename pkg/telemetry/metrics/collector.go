package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for metrics collection.
type Config struct {
	// Enabled toggles metrics collection. Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name. Default: "triton"
	Namespace string `yaml:"namespace"`

	// IncludeGoMetrics adds Go runtime and process collectors. Default: true
	IncludeGoMetrics bool `yaml:"include_go_metrics"`
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		Namespace:        "triton",
		IncludeGoMetrics: true,
	}
}

// Collector owns the Prometheus registry and the per-concern metric groups.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	// Engine holds rule evaluation and dispatch metrics.
	Engine *EngineMetrics
}

// NewCollector creates a collector with its own registry.
func NewCollector(config *Config) *Collector {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Namespace == "" {
		config.Namespace = "triton"
	}

	registry := prometheus.NewRegistry()
	if config.IncludeGoMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return &Collector{
		config:   config,
		registry: registry,
		Engine:   NewEngineMetrics(config.Namespace, registry),
	}
}

// Registry returns the underlying registry for additional registrations.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
