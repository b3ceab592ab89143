// Package telemetry holds observability concerns for Triton.
//
// The metrics subpackage owns the Prometheus registry and the rule engine
// metric groups. Structured logging uses log/slog with the process-wide
// default installed at startup; components attach themselves with
// slog.Default().With("component", ...).
package telemetry
