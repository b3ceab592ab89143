package engine

import (
	"context"
	"fmt"
	"log/slog"

	"automata-hq/triton/pkg/audit"
	"automata-hq/triton/pkg/entity"
	"automata-hq/triton/pkg/rules"
	"automata-hq/triton/pkg/rules/store"
	"automata-hq/triton/pkg/telemetry/metrics"
)

// Recorder receives the execution record of every dispatch attempt.
// *audit.Logger satisfies this.
type Recorder interface {
	Record(record *audit.ExecutionRecord)
}

// Engine is the per-event evaluation loop. One invocation handles one
// trigger event; independent events are safe to evaluate in parallel because
// all shared state lives behind the stores.
type Engine struct {
	ruleStore  store.Store
	filter     *permissionFilter
	matcher    *conditionMatcher
	resolver   *resolver
	dispatcher *Dispatcher
	recorder   Recorder
	metrics    *metrics.EngineMetrics
	logger     *slog.Logger
}

// New creates an engine. Recorder and metrics may be nil.
func New(ruleStore store.Store, entities entity.Store, dispatcher *Dispatcher, recorder Recorder, engineMetrics *metrics.EngineMetrics) *Engine {
	return &Engine{
		ruleStore:  ruleStore,
		filter:     newPermissionFilter(ruleStore),
		matcher:    newConditionMatcher(),
		resolver:   newResolver(entities),
		dispatcher: dispatcher,
		recorder:   recorder,
		metrics:    engineMetrics,
		logger:     slog.Default().With("component", "engine"),
	}
}

// HandleEvent evaluates every active rule for the event's trigger type, in
// priority order. The only returned error is a rule-store fetch failure; all
// per-rule outcomes are absorbed into execution records.
func (e *Engine) HandleEvent(ctx context.Context, event *rules.TriggerEvent) error {
	if !event.TriggerType.Valid() {
		return fmt.Errorf("invalid trigger type: %q", event.TriggerType)
	}

	candidates, err := e.ruleStore.ListActiveRules(ctx, event.TriggerType, event.InstanceID)
	if err != nil {
		return &FetchError{
			TriggerType: event.TriggerType,
			InstanceID:  event.InstanceID,
			Cause:       err,
		}
	}

	e.logger.Debug("evaluating trigger event",
		"trigger_type", event.TriggerType,
		"instance_id", event.InstanceID,
		"message_id", event.MessageID,
		"candidate_rules", len(candidates),
	)

	for _, rule := range candidates {
		if e.metrics != nil {
			e.metrics.RecordEvaluation(string(event.TriggerType))
		}

		if !e.filter.allows(ctx, rule, event) {
			if e.metrics != nil {
				e.metrics.RecordSkip(metrics.SkipPermission)
			}
			continue
		}

		if !e.matcher.matches(rule, event) {
			if e.metrics != nil {
				e.metrics.RecordSkip(metrics.SkipConditionMismatch)
			}
			continue
		}

		resolution := e.resolver.resolve(ctx, rule, event)
		record := e.dispatcher.Dispatch(ctx, rule, event, resolution)
		if e.recorder != nil {
			e.recorder.Record(record)
		}
	}

	return nil
}
