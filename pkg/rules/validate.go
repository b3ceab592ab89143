package rules

import (
	"fmt"
	"strings"
)

// ValidationError reports why a rule was rejected at load time.
type ValidationError struct {
	RuleID string
	Errors []string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("rule %s: invalid: %s", e.RuleID, strings.Join(e.Errors, "; "))
}

// Validate checks the rule's structural invariants. Invalid rules must be
// rejected at load time, never special-cased during evaluation.
//
// The core invariant: exactly the Conditions variant matching TriggerType may
// be populated. Plain message triggers carry no conditions; reaction triggers
// may carry an empty emoji set (meaning "match any emoji"); keyword and
// hashtag triggers must carry at least one entry, because an empty set would
// be indistinguishable from a plain message rule.
func (r *Rule) Validate() error {
	var errs []string

	if r.ID == "" {
		errs = append(errs, "missing id")
	}
	if r.Name == "" {
		errs = append(errs, "missing name")
	}
	if !r.TriggerType.Valid() {
		errs = append(errs, fmt.Sprintf("unknown trigger type %q", r.TriggerType))
	}
	if !r.ActionType.Valid() {
		errs = append(errs, fmt.Sprintf("unknown action type %q", r.ActionType))
	}
	if !r.PerformerFilter.Valid() {
		errs = append(errs, fmt.Sprintf("unknown performer filter %q", r.PerformerFilter))
	}
	if r.PerformerFilter == PerformerAllowList && len(r.AllowedPerformerIDs) == 0 {
		errs = append(errs, "allow_list performer filter requires at least one performer id")
	}

	if r.TriggerType.Valid() {
		errs = append(errs, r.validateConditions()...)
	}

	if len(errs) > 0 {
		return &ValidationError{RuleID: r.ID, Errors: errs}
	}
	return nil
}

// validateConditions checks the conditions-variant invariant against the
// rule's trigger type.
func (r *Rule) validateConditions() []string {
	var errs []string

	switch r.TriggerType {
	case TriggerMessage:
		if !r.Conditions.IsEmpty() {
			errs = append(errs, "message trigger must not carry conditions")
		}
	case TriggerReaction:
		if len(r.Conditions.Keywords) > 0 || len(r.Conditions.Tags) > 0 {
			errs = append(errs, "reaction trigger may only carry allowed_emojis")
		}
	case TriggerKeyword:
		if len(r.Conditions.Keywords) == 0 {
			errs = append(errs, "keyword trigger requires at least one keyword")
		}
		if len(r.Conditions.AllowedEmojis) > 0 || len(r.Conditions.Tags) > 0 {
			errs = append(errs, "keyword trigger may only carry keywords")
		}
	case TriggerHashtag:
		if len(r.Conditions.Tags) == 0 {
			errs = append(errs, "hashtag trigger requires at least one tag")
		}
		if len(r.Conditions.AllowedEmojis) > 0 || len(r.Conditions.Keywords) > 0 {
			errs = append(errs, "hashtag trigger may only carry tags")
		}
	}

	return errs
}
