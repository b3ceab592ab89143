// Triton is a declarative action rule engine for chat events.
//
// It listens for trigger events (messages, keywords, hashtags, emoji
// reactions), evaluates operator-authored rules against them, and produces
// derived records: tasks, calendar events, bills, and notes. Every dispatch
// is audited in an append-only execution history.
//
// Usage:
//
//	# Start the server with default configuration
//	triton run
//
//	# Start with a custom configuration file
//	triton run --config /path/to/config.yaml
//
//	# Validate rule files without starting the server
//	triton validate --rules rules/
//
//	# Query the execution history
//	triton history --rule rule-factura --status failure --limit 20
//
//	# Show version information
//	triton version
package main

func main() {
	Execute()
}
