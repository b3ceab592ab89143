// Package engine evaluates trigger events against the active rule set and
// dispatches matching rules into derived records.
//
// Evaluation per event runs fetch, then per rule in priority order:
// permission filter, condition match, idempotency resolution, dispatch. The
// first two stages skip silently (no execution record); everything past them
// produces exactly one execution record, success or failure. A failing rule
// never prevents later rules from running against the same event.
package engine
