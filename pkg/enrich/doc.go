// Package enrich extracts structured fields from raw message text before a
// derived record is created. Enrichment is strictly best-effort: the engine
// calls it with a bounded timeout and falls back to template-built defaults
// when the service is slow, unreachable, or returns garbage. A broken
// enrichment backend must never block or fail rule dispatch.
package enrich
