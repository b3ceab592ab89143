package engine

import (
	"context"

	"automata-hq/triton/pkg/entity"
	"automata-hq/triton/pkg/rules"
)

// Resolution is the idempotency decision for one (rule, event) pair.
type Resolution struct {
	// UpdateExisting is true when a prior derived record exists for the
	// triggering message and the rule allows merging into it.
	UpdateExisting bool

	// Link is the existing trigger link when UpdateExisting is true.
	Link *entity.DerivedLink
}

// resolver decides update-vs-create for recurring events. The lookup here is
// advisory: the dispatcher still reserves the link atomically, so a race
// between two concurrent events for the same message collapses to one create.
type resolver struct {
	entities entity.Store
}

func newResolver(entities entity.Store) *resolver {
	return &resolver{entities: entities}
}

// resolve returns UpdateExisting when the rule allows updates, produces a
// per-message derived entity, and a trigger link already exists. Lookup
// errors resolve to Create; the atomic link reservation in the dispatcher
// catches any duplicate this could let through.
func (r *resolver) resolve(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent) Resolution {
	if !rule.AllowUpdateExisting || !rule.ActionType.ProducesDerivedEntity() {
		return Resolution{}
	}

	link, err := r.entities.FindTriggerLink(ctx, event.MessageID, rule.ID)
	if err != nil {
		return Resolution{}
	}
	return Resolution{UpdateExisting: true, Link: link}
}
