package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks rule evaluation and dispatch.
//
// Metrics:
//   - triton_rule_evaluations_total: evaluations by trigger type
//   - triton_rule_skips_total: pre-dispatch skips by reason
//   - triton_dispatches_total: dispatch outcomes by action type and status
//   - triton_dispatch_duration_seconds: dispatch duration by action type
//   - triton_enrichment_duration_seconds: enrichment call latency by outcome
type EngineMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	skipsTotal         *prometheus.CounterVec
	dispatchesTotal    *prometheus.CounterVec
	dispatchDuration   *prometheus.HistogramVec
	enrichmentDuration *prometheus.HistogramVec
}

// Skip reasons recorded by the orchestrator's pre-dispatch stages.
const (
	SkipPermission         = "permission_denied"
	SkipConditionMismatch  = "condition_mismatch"
	SkipMalformedCondition = "malformed_condition"
)

// NewEngineMetrics creates and registers engine metrics.
func NewEngineMetrics(namespace string, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"trigger_type"},
		),

		skipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_skips_total",
				Help:      "Total number of rules skipped before dispatch",
			},
			[]string{"reason"},
		),

		dispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of action dispatches by outcome",
			},
			[]string{"action_type", "status"},
		),

		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of action dispatch in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
			[]string{"action_type"},
		),

		enrichmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "enrichment_duration_seconds",
				Help:      "Duration of enrichment service calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to 10s
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.skipsTotal,
		em.dispatchesTotal,
		em.dispatchDuration,
		em.enrichmentDuration,
	)

	return em
}

// RecordEvaluation records one rule evaluation for a trigger type.
func (em *EngineMetrics) RecordEvaluation(triggerType string) {
	em.evaluationsTotal.WithLabelValues(triggerType).Inc()
}

// RecordSkip records a pre-dispatch skip.
func (em *EngineMetrics) RecordSkip(reason string) {
	em.skipsTotal.WithLabelValues(reason).Inc()
}

// RecordDispatch records one dispatch outcome with its duration.
func (em *EngineMetrics) RecordDispatch(actionType, status string, duration time.Duration) {
	em.dispatchesTotal.WithLabelValues(actionType, status).Inc()
	em.dispatchDuration.WithLabelValues(actionType).Observe(duration.Seconds())
}

// RecordEnrichment records one enrichment call. Outcome is "ok" or "failed".
func (em *EngineMetrics) RecordEnrichment(outcome string, duration time.Duration) {
	em.enrichmentDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
