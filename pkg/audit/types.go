package audit

import (
	"context"
	"time"

	"automata-hq/triton/pkg/rules"
)

// Status is the outcome of one dispatch attempt.
type Status string

const (
	// StatusSuccess marks a dispatch that created or updated its derived record.
	StatusSuccess Status = "success"

	// StatusFailure marks a dispatch that failed; ErrorMessage carries the cause.
	StatusFailure Status = "failure"
)

// ExecutionRecord is the append-only audit of one (rule, event) evaluation
// attempt that reached dispatch. It is created once, never mutated, and never
// deleted by the engine (retention pruning is the only deletion path).
type ExecutionRecord struct {
	// ID is the unique record identifier (UUID v4).
	ID string `json:"id"`

	// RuleID is the rule that dispatched.
	RuleID string `json:"ruleId"`

	// Trigger is a snapshot of the event that caused the dispatch.
	Trigger rules.TriggerEvent `json:"trigger"`

	// Status is success or failure.
	Status Status `json:"status"`

	// ResultSummary describes the outcome (e.g. "task created: <id>").
	ResultSummary string `json:"resultSummary"`

	// ErrorMessage carries the failure cause when Status is failure.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// DurationMs is the dispatch duration in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// ExecutedAt is when the dispatch completed.
	ExecutedAt time.Time `json:"executedAt"`
}

// Query filters execution records for audit inspection.
type Query struct {
	// RuleID filters by rule when non-empty.
	RuleID string

	// Status filters by outcome when non-empty.
	Status Status

	// Since excludes records executed before this time when non-zero.
	Since time.Time

	// Until excludes records executed after this time when non-zero.
	Until time.Time

	// Limit caps the number of returned records; 0 means no cap.
	Limit int
}

// Storage persists execution records. Implementations must tolerate
// concurrent appends; ordering within one writer is preserved.
type Storage interface {
	// Append writes one record.
	Append(ctx context.Context, record *ExecutionRecord) error

	// List returns records matching the query, newest first.
	List(ctx context.Context, query *Query) ([]*ExecutionRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records executed before the cutoff and returns
	// how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many were
	// removed. Used to enforce the max-record retention cap.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases storage resources.
	Close() error
}
