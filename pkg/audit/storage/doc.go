// Package storage provides execution-record backends: an in-memory
// implementation for tests and a SQLite implementation (CGO-free
// modernc.org/sqlite driver) for production.
package storage
