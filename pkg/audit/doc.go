// Package audit records rule execution outcomes as an append-only history.
//
// Every (rule, event) evaluation that reaches dispatch produces exactly one
// ExecutionRecord (success or failure), written asynchronously so the
// engine's hot path never blocks on, or fails because of, audit storage.
// Records are immutable once written; retention pruning (pkg/audit/retention)
// is the only deletion path.
package audit
