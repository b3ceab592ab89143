package entity

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("entity not found")

// StoreError wraps a storage backend failure with the backend name and the
// operation that failed.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error returns the error message.
func (e *StoreError) Error() string {
	return fmt.Sprintf("entity store %s: %s: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}

// Store persists derived records and their trigger links. Every call is a
// potential blocking boundary; implementations must honor the context.
//
// All Create methods expect the record's ID to be set by the caller: the
// dispatcher mints IDs up front so it can reserve the derived link before the
// record exists (see UpsertDerivedLink).
type Store interface {
	// CreateTask persists a new task.
	CreateTask(ctx context.Context, task *Task) error

	// GetTask returns the task with the given ID, or ErrNotFound.
	GetTask(ctx context.Context, id string) (*Task, error)

	// UpdateTask replaces the stored task with the given state.
	// Returns ErrNotFound if the task does not exist.
	UpdateTask(ctx context.Context, task *Task) error

	// CreateCalendarEvent persists a new calendar event.
	CreateCalendarEvent(ctx context.Context, event *CalendarEvent) error

	// CreateBill persists a new bill.
	CreateBill(ctx context.Context, bill *Bill) error

	// CreateNote persists a new note.
	CreateNote(ctx context.Context, note *Note) error

	// AddLabel attaches a label to a chat or message.
	AddLabel(ctx context.Context, label *Label) error

	// UpsertDerivedLink atomically inserts the link if no trigger-type link
	// exists yet for (TriggeringMessageID, RuleID), otherwise returns the
	// existing link unchanged. The returned bool is true when the given link
	// was inserted. This is the only linearizable primitive the engine
	// requires; it must not be implemented as a separate read-then-write.
	UpsertDerivedLink(ctx context.Context, link *DerivedLink) (*DerivedLink, bool, error)

	// FindTriggerLink returns the trigger-type link for the given message and
	// rule, or ErrNotFound.
	FindTriggerLink(ctx context.Context, triggeringMessageID, ruleID string) (*DerivedLink, error)

	// RecordUpdateLink appends an update-type link recording that a
	// recurrence was merged into an existing derived record.
	RecordUpdateLink(ctx context.Context, link *DerivedLink) error

	// DeleteDerivedLink removes a link by ID. Used to roll back a link
	// reservation when the subsequent record creation fails.
	DeleteDerivedLink(ctx context.Context, id string) error

	// Close releases storage resources.
	Close() error
}
