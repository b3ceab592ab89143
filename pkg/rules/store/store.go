package store

import (
	"context"
	"errors"
	"fmt"

	"automata-hq/triton/pkg/rules"
)

// Sentinel errors returned by rule stores.
var (
	// ErrRuleNotFound indicates the requested rule does not exist.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrOwnerNotFound indicates no owner mapping exists for the instance.
	// The permission filter treats this as fail-closed.
	ErrOwnerNotFound = errors.New("instance owner not found")
)

// StoreError wraps a rule storage failure with backend and operation context.
type StoreError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error returns the error message.
func (e *StoreError) Error() string {
	return fmt.Sprintf("rule store %s: %s: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Store provides rules and instance ownership to the engine. The engine
// re-fetches the active rule set for every trigger event rather than caching
// it, so writes become visible on the next event.
type Store interface {
	// ListActiveRules returns all active rules for the trigger type that are
	// unscoped or scoped to the given instance, ordered by priority
	// descending with most-recently-created first on ties.
	ListActiveRules(ctx context.Context, triggerType rules.TriggerType, instanceID string) ([]*rules.Rule, error)

	// GetRule returns a rule by ID, or ErrRuleNotFound.
	GetRule(ctx context.Context, id string) (*rules.Rule, error)

	// SaveRule validates and inserts or replaces a rule.
	SaveRule(ctx context.Context, rule *rules.Rule) error

	// DeleteRule removes a rule by ID. Removing a missing rule is not an error.
	DeleteRule(ctx context.Context, id string) error

	// ReplaceAll atomically swaps the full rule set. Used by the file source
	// on reload. Every rule must already be validated.
	ReplaceAll(ctx context.Context, list []*rules.Rule) error

	// GetInstanceOwner resolves the owner actor of a channel instance, or
	// ErrOwnerNotFound.
	GetInstanceOwner(ctx context.Context, instanceID string) (string, error)

	// SetInstanceOwner records the owner actor of a channel instance.
	SetInstanceOwner(ctx context.Context, instanceID, ownerID string) error

	// Close releases storage resources.
	Close() error
}
