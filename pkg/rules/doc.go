// Package rules defines the automation rule model for the Triton action rule
// engine: rules, their trigger conditions, performer scopes, and the canonical
// TriggerEvent value that inbound occurrences are translated into.
//
// A Rule is a declarative automation unit. It reacts to one trigger type
// (message, keyword, hashtag, reaction), optionally scoped to a single
// communication channel instance and restricted to a set of performers, and
// produces one derived record (task, calendar event, bill, note, ...) when it
// fires.
//
// Rules are validated at load time, never at evaluation time: a rule whose
// conditions do not fit its trigger type is rejected by Validate before it
// reaches the engine. The store boundary (pkg/rules/store) normalizes legacy
// condition payloads into the single tagged Conditions variant defined here.
package rules
