// Package cli holds shared helpers for the triton command line: signal
// handling, command error types, and output formatting for query commands.
package cli
