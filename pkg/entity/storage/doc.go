// Package storage provides Store backends for derived records: an in-memory
// implementation for tests and a SQLite implementation for production.
//
// The SQLite backend enforces the single-trigger-link invariant with a partial
// unique index and resolves UpsertDerivedLink with a conditional insert, so
// concurrent evaluations of the same message cannot both create.
package storage
