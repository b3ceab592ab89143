// Package entity defines the derived business records produced by rule
// dispatch (tasks, calendar events, bills, notes, labels) and the Store
// interface the engine persists them through.
//
// # Derived record links
//
// Every derived record is tied back to its triggering message by a
// DerivedLink. The link table is the engine's idempotency primitive: at most
// one trigger-type link may exist per (triggering message, rule), enforced by
// the store with an atomic insert-if-absent (UpsertDerivedLink). Two
// concurrent evaluations of the same message therefore cannot both create:
// exactly one wins the reservation, the other observes the existing link and
// updates instead.
//
// # Backends
//
// pkg/entity/storage provides a MemoryStore for tests and a SQLite-backed
// store for production use.
package entity
