package engine

import (
	"fmt"

	"automata-hq/triton/pkg/rules"
)

// FetchError indicates the rule store was unreachable at the start of an
// evaluation. This is the only fatal error class: the whole event evaluation
// aborts and the caller may retry the event.
type FetchError struct {
	TriggerType rules.TriggerType
	InstanceID  string
	Cause       error
}

// Error returns the error message.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch rules for %s events on instance %q: %v",
		e.TriggerType, e.InstanceID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DispatchError wraps a failure inside one rule's dispatch. It is recorded in
// the rule's execution record and never propagates past the dispatch boundary.
type DispatchError struct {
	RuleID     string
	ActionType rules.ActionType
	Cause      error
}

// Error returns the error message.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch of rule %s (%s) failed: %v", e.RuleID, e.ActionType, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Cause
}
