package engine

import (
	"context"
	"log/slog"

	"automata-hq/triton/pkg/rules"
	"automata-hq/triton/pkg/rules/store"
)

// permissionFilter decides whether an event's actor may fire a rule.
// Owner lookups that fail resolve to "not allowed": a rule must never fire on
// an instance whose ownership cannot be established.
type permissionFilter struct {
	ruleStore store.Store
	logger    *slog.Logger
}

func newPermissionFilter(ruleStore store.Store) *permissionFilter {
	return &permissionFilter{
		ruleStore: ruleStore,
		logger:    slog.Default().With("component", "engine.filter"),
	}
}

// allows reports whether the event's actor passes the rule's performer filter.
func (f *permissionFilter) allows(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent) bool {
	switch rule.PerformerFilter {
	case rules.PerformerAnyone:
		return true

	case rules.PerformerOwnerOnly:
		// The rule creator counts as an owner alongside the instance owner.
		if rule.CreatedBy != "" && event.ActorID == rule.CreatedBy {
			return true
		}
		owner, err := f.ruleStore.GetInstanceOwner(ctx, event.InstanceID)
		if err != nil {
			f.logger.Warn("owner lookup failed, skipping rule",
				"rule_id", rule.ID,
				"instance_id", event.InstanceID,
				"error", err,
			)
			return false
		}
		return event.ActorID == owner

	case rules.PerformerAllowList:
		return rule.AllowsPerformer(event.ActorID)

	default:
		f.logger.Warn("unknown performer filter, skipping rule",
			"rule_id", rule.ID,
			"performer_filter", rule.PerformerFilter,
		)
		return false
	}
}
