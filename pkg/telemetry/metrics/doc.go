// Package metrics exposes Prometheus instrumentation for the rule engine:
// evaluation counts, skip reasons, dispatch outcomes, durations, and
// enrichment latency. All metrics live under the "triton" namespace on a
// private registry served by Collector.Handler.
package metrics
