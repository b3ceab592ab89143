package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"automata-hq/triton/pkg/audit"
	"automata-hq/triton/pkg/enrich"
	"automata-hq/triton/pkg/entity"
	"automata-hq/triton/pkg/notify"
	"automata-hq/triton/pkg/rules"
	"automata-hq/triton/pkg/telemetry/metrics"
)

// Messenger delivers send_message actions back to the originating chat.
type Messenger interface {
	SendMessage(ctx context.Context, instanceID, chatID, text string) error
}

// NoopMessenger logs outgoing messages instead of sending them. Used when no
// messaging gateway is configured.
type NoopMessenger struct{}

// SendMessage logs the message and returns nil.
func (NoopMessenger) SendMessage(ctx context.Context, instanceID, chatID, text string) error {
	slog.Default().Info("send_message action without messenger, dropping",
		"instance_id", instanceID,
		"chat_id", chatID,
	)
	return nil
}

// actionHandler performs one action type. It returns a human-readable result
// summary or an error that becomes the execution record's failure message.
type actionHandler func(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error)

// Dispatcher routes a matched rule to its action handler and converts every
// outcome, including panics, into exactly one execution record.
type Dispatcher struct {
	config    *Config
	entities  entity.Store
	enricher  enrich.Service
	publisher notify.Publisher
	messenger Messenger
	metrics   *metrics.EngineMetrics
	logger    *slog.Logger

	handlers map[rules.ActionType]actionHandler
}

// NewDispatcher creates a dispatcher. Publisher, messenger and metrics may be
// nil; enricher may be nil to disable enrichment.
func NewDispatcher(config *Config, entities entity.Store, enricher enrich.Service, publisher notify.Publisher, messenger Messenger, engineMetrics *metrics.EngineMetrics) *Dispatcher {
	if config == nil {
		config = DefaultConfig()
	}
	config.Validate()
	if enricher == nil {
		enricher = enrich.NoopService{}
	}
	if publisher == nil {
		publisher = notify.NewLogPublisher()
	}
	if messenger == nil {
		messenger = NoopMessenger{}
	}

	d := &Dispatcher{
		config:    config,
		entities:  entities,
		enricher:  enricher,
		publisher: publisher,
		messenger: messenger,
		metrics:   engineMetrics,
		logger:    slog.Default().With("component", "engine.dispatcher"),
	}

	// One handler per action type; adding an action means adding an entry
	// here, which keeps routing a compile-time-checked table instead of a
	// conditional chain.
	d.handlers = map[rules.ActionType]actionHandler{
		rules.ActionCreateTask:          d.handleCreateTask,
		rules.ActionCreateCalendarEvent: d.handleCreateCalendarEvent,
		rules.ActionCreateBill:          d.handleCreateBill,
		rules.ActionCreateNote:          d.handleCreateNote,
		rules.ActionSendMessage:         d.handleSendMessage,
		rules.ActionAddLabel:            d.handleAddLabel,
	}

	return d
}

// Dispatch executes one matched rule and returns its execution record. It
// never returns an error and never panics outward: every failure inside a
// handler surfaces as a failure record for this rule only.
func (d *Dispatcher) Dispatch(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution) *audit.ExecutionRecord {
	start := time.Now()
	record := &audit.ExecutionRecord{
		ID:      uuid.NewString(),
		RuleID:  rule.ID,
		Trigger: *event,
	}

	summary, err := d.run(ctx, rule, event, resolution)
	record.DurationMs = time.Since(start).Milliseconds()
	record.ExecutedAt = time.Now()

	if err != nil {
		record.Status = audit.StatusFailure
		record.ErrorMessage = err.Error()
		d.logger.Error("rule dispatch failed",
			"rule_id", rule.ID,
			"action_type", rule.ActionType,
			"error", err,
		)
	} else {
		record.Status = audit.StatusSuccess
		record.ResultSummary = summary
		d.logger.Info("rule dispatched",
			"rule_id", rule.ID,
			"action_type", rule.ActionType,
			"result", summary,
		)
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(string(rule.ActionType), string(record.Status), time.Since(start))
	}
	return record
}

// run executes the handler for the rule's action type behind a panic guard.
func (d *Dispatcher) run(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic during dispatch",
				"rule_id", rule.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = &DispatchError{
				RuleID:     rule.ID,
				ActionType: rule.ActionType,
				Cause:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	handler, ok := d.handlers[rule.ActionType]
	if !ok {
		return "", fmt.Errorf("unknown action type: %s", rule.ActionType)
	}

	result := d.enrichFor(ctx, rule.ActionType, event)
	return handler(ctx, rule, event, resolution, result)
}

// enrichFor calls the enrichment service with a bounded timeout. Any failure
// yields an empty result so dispatch proceeds on templates and defaults.
func (d *Dispatcher) enrichFor(ctx context.Context, action rules.ActionType, event *rules.TriggerEvent) *enrich.Result {
	domain, ok := enrich.DomainForAction(action)
	if !ok {
		return &enrich.Result{}
	}

	start := time.Now()
	enrichCtx, cancel := context.WithTimeout(ctx, d.config.EnrichmentTimeout)
	defer cancel()

	result, err := d.enricher.Enrich(enrichCtx, &enrich.Request{
		Domain:      domain,
		Content:     event.Content,
		SenderName:  event.SenderName,
		ChatID:      event.ChatID,
		TriggerType: event.TriggerType,
		Timestamp:   event.Timestamp,
	})
	if err != nil || result == nil {
		if d.metrics != nil {
			d.metrics.RecordEnrichment("failed", time.Since(start))
		}
		d.logger.Warn("enrichment failed, proceeding with defaults",
			"domain", domain,
			"error", err,
		)
		return &enrich.Result{}
	}

	if d.metrics != nil {
		d.metrics.RecordEnrichment("ok", time.Since(start))
	}
	return result
}

// reserveLink atomically claims the trigger link for (message, rule) before
// the entity is created. Returns the existing link when another evaluation
// won the race, in which case the caller must not create a duplicate.
func (d *Dispatcher) reserveLink(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, entityType entity.EntityType, entityID string) (existing *entity.DerivedLink, reserved *entity.DerivedLink, err error) {
	link := &entity.DerivedLink{
		ID:                  uuid.NewString(),
		DerivedEntityID:     entityID,
		EntityType:          entityType,
		RuleID:              rule.ID,
		TriggeringMessageID: event.MessageID,
		InstanceID:          event.InstanceID,
		LinkType:            entity.LinkTrigger,
		CreatedAt:           time.Now(),
	}

	got, inserted, err := d.entities.UpsertDerivedLink(ctx, link)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reserve derived link: %w", err)
	}
	if !inserted {
		return got, nil, nil
	}
	return nil, got, nil
}

// releaseLink rolls back a reservation after a failed creation.
func (d *Dispatcher) releaseLink(ctx context.Context, link *entity.DerivedLink) {
	if err := d.entities.DeleteDerivedLink(ctx, link.ID); err != nil {
		d.logger.Error("failed to roll back derived link reservation",
			"link_id", link.ID,
			"error", err,
		)
	}
}

func (d *Dispatcher) publish(action notify.Action, entityType entity.EntityType, entityID, ruleID string, payload any) {
	d.publisher.Publish(notify.Notification{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RuleID:     ruleID,
		Entity:     payload,
	})
}

// handleCreateTask builds a task, updating the previously derived task when
// the resolution or the link reservation says one already exists.
func (d *Dispatcher) handleCreateTask(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	if resolution.UpdateExisting {
		return d.updateTask(ctx, rule, event, resolution.Link, result)
	}

	task := &entity.Task{
		ID:          uuid.NewString(),
		Title:       d.mergeField(result.Title, rule, "title", event, defaultTitle(event)),
		Description: d.mergeField(result.Description, rule, "description", event, ""),
		Priority:    mergePriority(result.Priority, rule.ActionConfig["priority"]),
		DueDate:     result.DueDate,
		Tags:        mergeTags(result.Tags, rule.ActionConfig["tags"]),
		Source:      sourceOf(event),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	existing, reserved, err := d.reserveLink(ctx, rule, event, entity.TypeTask, task.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		// Lost the race or a recurrence arrived for a rule that does not
		// allow merging; either way the earlier task stands.
		if rule.AllowUpdateExisting {
			return d.updateTask(ctx, rule, event, existing, result)
		}
		return d.retainExisting(ctx, rule, event, existing)
	}

	if err := d.entities.CreateTask(ctx, task); err != nil {
		d.releaseLink(ctx, reserved)
		return "", fmt.Errorf("failed to create task: %w", err)
	}

	d.publish(notify.ActionCreated, entity.TypeTask, task.ID, rule.ID, task)
	return fmt.Sprintf("task created: %s", task.ID), nil
}

// updateTask merges a recurrence into the existing task: the description
// grows an update note, priority only escalates, and the due date is filled
// only when absent.
func (d *Dispatcher) updateTask(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, link *entity.DerivedLink, result *enrich.Result) (string, error) {
	task, err := d.entities.GetTask(ctx, link.DerivedEntityID)
	if err != nil {
		return "", fmt.Errorf("failed to load task %s for update: %w", link.DerivedEntityID, err)
	}

	note := result.Description
	if note == "" {
		note = enrich.Interpolate("{{content}}", event)
	}
	stamp := event.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	task.Description = strings.TrimSpace(task.Description +
		fmt.Sprintf("\n\nUpdate (%s): %s", stamp.Format(time.RFC3339), note))

	if p := entity.TaskPriority(result.Priority); p.Rank() > task.Priority.Rank() {
		task.Priority = p
	}
	if task.DueDate == nil && result.DueDate != nil {
		task.DueDate = result.DueDate
	}
	task.UpdatedAt = time.Now()

	if err := d.entities.UpdateTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to update task %s: %w", task.ID, err)
	}

	if err := d.entities.RecordUpdateLink(ctx, &entity.DerivedLink{
		ID:                  uuid.NewString(),
		DerivedEntityID:     task.ID,
		EntityType:          entity.TypeTask,
		RuleID:              rule.ID,
		TriggeringMessageID: event.MessageID,
		InstanceID:          event.InstanceID,
		LinkType:            entity.LinkUpdate,
		CreatedAt:           time.Now(),
	}); err != nil {
		d.logger.Warn("failed to record update link",
			"task_id", task.ID,
			"error", err,
		)
	}

	d.publish(notify.ActionUpdated, entity.TypeTask, task.ID, rule.ID, task)
	return fmt.Sprintf("task updated: %s", task.ID), nil
}

// handleCreateCalendarEvent builds a calendar event. An end time is derived
// from the start plus the configured duration when none is given.
func (d *Dispatcher) handleCreateCalendarEvent(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	if resolution.UpdateExisting {
		return d.retainExisting(ctx, rule, event, resolution.Link)
	}

	start := time.Now()
	if result.StartTime != nil {
		start = *result.StartTime
	} else if raw := rule.ActionConfig["start_time"]; raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			start = parsed
		}
	}

	duration := d.config.DefaultEventDuration
	if raw := rule.ActionConfig["duration_minutes"]; raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			duration = time.Duration(minutes) * time.Minute
		}
	}
	end := start.Add(duration)
	if result.EndTime != nil {
		end = *result.EndTime
	}

	attendees := splitList(rule.ActionConfig["attendees"])
	needsLink := result.NeedsMeetingLink ||
		rule.ActionConfig["needs_meeting_link"] == "true" ||
		len(attendees) > 1

	calEvent := &entity.CalendarEvent{
		ID:               uuid.NewString(),
		Title:            d.mergeField(result.Title, rule, "title", event, defaultTitle(event)),
		Description:      d.mergeField(result.Description, rule, "description", event, ""),
		Location:         d.mergeField(result.Location, rule, "location", event, ""),
		StartTime:        start,
		EndTime:          end,
		Attendees:        attendees,
		NeedsMeetingLink: needsLink,
		Source:           sourceOf(event),
		CreatedAt:        time.Now(),
	}

	existing, reserved, err := d.reserveLink(ctx, rule, event, entity.TypeCalendarEvent, calEvent.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return d.retainExisting(ctx, rule, event, existing)
	}

	if err := d.entities.CreateCalendarEvent(ctx, calEvent); err != nil {
		d.releaseLink(ctx, reserved)
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	d.publish(notify.ActionCreated, entity.TypeCalendarEvent, calEvent.ID, rule.ID, calEvent)
	return fmt.Sprintf("calendar event created: %s", calEvent.ID), nil
}

// handleCreateBill builds a bill. Extraction gaps degrade instead of failing:
// amount defaults to zero and currency to the rule's or engine's default.
func (d *Dispatcher) handleCreateBill(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	if resolution.UpdateExisting {
		return d.retainExisting(ctx, rule, event, resolution.Link)
	}

	amount := result.Amount
	if amount == 0 {
		if raw := rule.ActionConfig["amount"]; raw != "" {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				amount = parsed
			}
		}
	}

	currency := result.Currency
	if currency == "" {
		currency = rule.ActionConfig["currency"]
	}
	if currency == "" {
		currency = d.config.DefaultCurrency
	}

	bill := &entity.Bill{
		ID:          uuid.NewString(),
		Vendor:      d.mergeField(result.Vendor, rule, "vendor", event, "Unknown"),
		Amount:      amount,
		Currency:    currency,
		Category:    d.mergeField(result.Category, rule, "category", event, ""),
		Description: d.mergeField(result.Description, rule, "description", event, ""),
		DueDate:     result.DueDate,
		Source:      sourceOf(event),
		CreatedAt:   time.Now(),
	}

	existing, reserved, err := d.reserveLink(ctx, rule, event, entity.TypeBill, bill.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return d.retainExisting(ctx, rule, event, existing)
	}

	if err := d.entities.CreateBill(ctx, bill); err != nil {
		d.releaseLink(ctx, reserved)
		return "", fmt.Errorf("failed to create bill: %w", err)
	}

	d.publish(notify.ActionCreated, entity.TypeBill, bill.ID, rule.ID, bill)
	return fmt.Sprintf("bill created: %s", bill.ID), nil
}

// handleCreateNote builds a free-form note from the message content.
func (d *Dispatcher) handleCreateNote(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	if resolution.UpdateExisting {
		return d.retainExisting(ctx, rule, event, resolution.Link)
	}

	content := interpolateConfig(rule, "content", event)
	if content == "" {
		content = enrich.Interpolate("{{content}}", event)
	}

	note := &entity.Note{
		ID:        uuid.NewString(),
		Title:     d.mergeField(result.Title, rule, "title", event, defaultTitle(event)),
		Content:   content,
		Tags:      mergeTags(result.Tags, rule.ActionConfig["tags"]),
		Source:    sourceOf(event),
		CreatedAt: time.Now(),
	}

	existing, reserved, err := d.reserveLink(ctx, rule, event, entity.TypeNote, note.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return d.retainExisting(ctx, rule, event, existing)
	}

	if err := d.entities.CreateNote(ctx, note); err != nil {
		d.releaseLink(ctx, reserved)
		return "", fmt.Errorf("failed to create note: %w", err)
	}

	d.publish(notify.ActionCreated, entity.TypeNote, note.ID, rule.ID, note)
	return fmt.Sprintf("note created: %s", note.ID), nil
}

// handleSendMessage sends a templated reply to the originating chat.
func (d *Dispatcher) handleSendMessage(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	text := interpolateConfig(rule, "message", event)
	if text == "" {
		return "", fmt.Errorf("send_message rule has no message template")
	}

	if err := d.messenger.SendMessage(ctx, event.InstanceID, event.ChatID, text); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return fmt.Sprintf("message sent to chat %s", event.ChatID), nil
}

// handleAddLabel attaches a label to the triggering chat or message.
func (d *Dispatcher) handleAddLabel(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, resolution Resolution, result *enrich.Result) (string, error) {
	name := interpolateConfig(rule, "label", event)
	if name == "" {
		return "", fmt.Errorf("add_label rule has no label name")
	}

	label := &entity.Label{
		ID:         uuid.NewString(),
		InstanceID: event.InstanceID,
		ChatID:     event.ChatID,
		MessageID:  event.MessageID,
		Name:       name,
		CreatedAt:  time.Now(),
	}
	if err := d.entities.AddLabel(ctx, label); err != nil {
		return "", fmt.Errorf("failed to add label: %w", err)
	}
	return fmt.Sprintf("label added: %s", name), nil
}

// retainExisting resolves an update for entity kinds without merge semantics:
// the existing record stands and the recurrence is recorded as an update link.
func (d *Dispatcher) retainExisting(ctx context.Context, rule *rules.Rule, event *rules.TriggerEvent, link *entity.DerivedLink) (string, error) {
	if err := d.entities.RecordUpdateLink(ctx, &entity.DerivedLink{
		ID:                  uuid.NewString(),
		DerivedEntityID:     link.DerivedEntityID,
		EntityType:          link.EntityType,
		RuleID:              rule.ID,
		TriggeringMessageID: event.MessageID,
		InstanceID:          event.InstanceID,
		LinkType:            entity.LinkUpdate,
		CreatedAt:           time.Now(),
	}); err != nil {
		d.logger.Warn("failed to record update link",
			"entity_id", link.DerivedEntityID,
			"error", err,
		)
	}
	return fmt.Sprintf("existing %s retained: %s", link.EntityType, link.DerivedEntityID), nil
}

// mergeField applies the field merge order: enrichment result, then the
// rule's interpolated action config template, then the hard default.
func (d *Dispatcher) mergeField(enriched string, rule *rules.Rule, key string, event *rules.TriggerEvent, fallback string) string {
	if enriched != "" {
		return enriched
	}
	if value := interpolateConfig(rule, key, event); value != "" {
		return value
	}
	return fallback
}

func interpolateConfig(rule *rules.Rule, key string, event *rules.TriggerEvent) string {
	template, ok := rule.ActionConfig[key]
	if !ok || template == "" {
		return ""
	}
	return enrich.Interpolate(template, event)
}

// defaultTitle derives a title from the message content, truncated so chat
// walls of text do not become record titles.
func defaultTitle(event *rules.TriggerEvent) string {
	content := strings.TrimSpace(event.Content)
	if content == "" {
		return "Untitled"
	}
	const maxTitle = 120
	if runes := []rune(content); len(runes) > maxTitle {
		return string(runes[:maxTitle])
	}
	return content
}

func mergePriority(enriched, configured string) entity.TaskPriority {
	if p := entity.TaskPriority(enriched); p.Rank() > 0 {
		return p
	}
	if p := entity.TaskPriority(configured); p.Rank() > 0 {
		return p
	}
	return entity.PriorityMedium
}

func mergeTags(enriched []string, configured string) []string {
	if len(enriched) > 0 {
		return enriched
	}
	return splitList(configured)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sourceOf(event *rules.TriggerEvent) entity.Source {
	return entity.Source{
		InstanceID: event.InstanceID,
		ChatID:     event.ChatID,
		MessageID:  event.MessageID,
		ActorID:    event.ActorID,
	}
}
