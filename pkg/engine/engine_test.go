package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"automata-hq/triton/pkg/audit"
	"automata-hq/triton/pkg/enrich"
	"automata-hq/triton/pkg/entity"
	entitystorage "automata-hq/triton/pkg/entity/storage"
	"automata-hq/triton/pkg/notify"
	"automata-hq/triton/pkg/rules"
	rulestore "automata-hq/triton/pkg/rules/store"
)

type captureRecorder struct {
	records []*audit.ExecutionRecord
}

func (r *captureRecorder) Record(record *audit.ExecutionRecord) {
	r.records = append(r.records, record)
}

type capturePublisher struct {
	notifications []notify.Notification
}

func (p *capturePublisher) Publish(n notify.Notification) {
	p.notifications = append(p.notifications, n)
}

type failingEnricher struct{}

func (failingEnricher) Enrich(ctx context.Context, req *enrich.Request) (*enrich.Result, error) {
	return nil, errors.New("enrichment service down")
}

func (failingEnricher) Close() error { return nil }

// noteFailStore fails note creation while leaving every other write intact.
type noteFailStore struct {
	entity.Store
}

func (s *noteFailStore) CreateNote(ctx context.Context, note *entity.Note) error {
	return errors.New("note storage exploded")
}

type fixture struct {
	ruleStore *rulestore.MemoryStore
	entities  *entitystorage.MemoryStore
	recorder  *captureRecorder
	publisher *capturePublisher
	engine    *Engine
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		ruleStore: rulestore.NewMemoryStore(),
		entities:  entitystorage.NewMemoryStore(),
		recorder:  &captureRecorder{},
		publisher: &capturePublisher{},
	}
	var enricher enrich.Service = enrich.NoopService{}
	var entities entity.Store = f.entities

	for _, opt := range opts {
		opt(f)
	}
	if f.engine == nil {
		dispatcher := NewDispatcher(DefaultConfig(), entities, enricher, f.publisher, nil, nil)
		f.engine = New(f.ruleStore, entities, dispatcher, f.recorder, nil)
	}
	return f
}

func reactionRule(id string, priority int) *rules.Rule {
	return &rules.Rule{
		ID:              id,
		Name:            id,
		IsActive:        true,
		Priority:        priority,
		TriggerType:     rules.TriggerReaction,
		PerformerFilter: rules.PerformerAnyone,
		Conditions:      rules.Conditions{AllowedEmojis: []string{"✅"}},
		ActionType:      rules.ActionCreateTask,
		CreatedAt:       time.Now(),
	}
}

func reactionEvent(messageID, emoji string) *rules.TriggerEvent {
	return &rules.TriggerEvent{
		TriggerType: rules.TriggerReaction,
		InstanceID:  "inst-1",
		ChatID:      "chat-1",
		MessageID:   messageID,
		ActorID:     "user-a",
		Content:     "Buy milk",
		Emoji:       emoji,
		Timestamp:   time.Now(),
	}
}

func mustSave(t *testing.T, store *rulestore.MemoryStore, rule *rules.Rule) {
	t.Helper()
	if err := store.SaveRule(context.Background(), rule); err != nil {
		t.Fatalf("failed to save rule %s: %v", rule.ID, err)
	}
}

// TestReactionDispatchCreatesTask tests the basic end-to-end path: a matching
// reaction creates one task with a title derived from the message content.
func TestReactionDispatchCreatesTask(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, reactionRule("rule-1", 10))

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(f.recorder.records) != 1 {
		t.Fatalf("expected 1 execution record, got %d", len(f.recorder.records))
	}
	record := f.recorder.records[0]
	if record.Status != audit.StatusSuccess {
		t.Errorf("expected success, got %s (%s)", record.Status, record.ErrorMessage)
	}
	if record.RuleID != "rule-1" {
		t.Errorf("unexpected rule id %s", record.RuleID)
	}
	if f.entities.TaskCount() != 1 {
		t.Errorf("expected 1 task, got %d", f.entities.TaskCount())
	}

	if len(f.publisher.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.publisher.notifications))
	}
	task, ok := f.publisher.notifications[0].Entity.(*entity.Task)
	if !ok {
		t.Fatalf("expected task payload, got %T", f.publisher.notifications[0].Entity)
	}
	if task.Title != "Buy milk" {
		t.Errorf("expected title from content, got %q", task.Title)
	}
}

// TestInactiveRuleNeverDispatches tests that inactive rules produce nothing.
func TestInactiveRuleNeverDispatches(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.IsActive = false
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 0 {
		t.Errorf("expected no execution records for inactive rule, got %d", len(f.recorder.records))
	}
	if f.entities.TaskCount() != 0 {
		t.Errorf("expected no tasks, got %d", f.entities.TaskCount())
	}
}

// TestEmojiMismatchSkips tests that a non-listed emoji does not dispatch.
func TestEmojiMismatchSkips(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, reactionRule("rule-1", 10))

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "🔥")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 0 {
		t.Errorf("expected no execution records, got %d", len(f.recorder.records))
	}
}

// TestEmptyEmojiSetMatchesAny tests that a reaction rule without listed
// emojis fires on any emoji.
func TestEmptyEmojiSetMatchesAny(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.Conditions = rules.Conditions{}
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "🎉")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 1 {
		t.Errorf("expected 1 execution record, got %d", len(f.recorder.records))
	}
}

// TestKeywordMatchIsCaseInsensitive tests substring keyword matching.
func TestKeywordMatchIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, &rules.Rule{
		ID:              "kw-1",
		Name:            "invoice watcher",
		IsActive:        true,
		TriggerType:     rules.TriggerKeyword,
		PerformerFilter: rules.PerformerAnyone,
		Conditions:      rules.Conditions{Keywords: []string{"factura"}},
		ActionType:      rules.ActionCreateNote,
		CreatedAt:       time.Now(),
	})

	event := &rules.TriggerEvent{
		TriggerType: rules.TriggerKeyword,
		InstanceID:  "inst-1",
		ChatID:      "chat-1",
		MessageID:   "m1",
		ActorID:     "user-a",
		Content:     "Please send the FACTURA",
		Timestamp:   time.Now(),
	}
	if err := f.engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 1 || f.recorder.records[0].Status != audit.StatusSuccess {
		t.Fatalf("expected one successful record, got %+v", f.recorder.records)
	}
}

// TestHashtagMatch tests matching against the pre-extracted hashtag set.
func TestHashtagMatch(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, &rules.Rule{
		ID:              "ht-1",
		Name:            "todo hashtag",
		IsActive:        true,
		TriggerType:     rules.TriggerHashtag,
		PerformerFilter: rules.PerformerAnyone,
		Conditions:      rules.Conditions{Tags: []string{"todo"}},
		ActionType:      rules.ActionCreateTask,
		CreatedAt:       time.Now(),
	})

	event := &rules.TriggerEvent{
		TriggerType: rules.TriggerHashtag,
		InstanceID:  "inst-1",
		ChatID:      "chat-1",
		MessageID:   "m1",
		ActorID:     "user-a",
		Content:     "fix the roof #TODO",
		Hashtags:    []string{"TODO"},
		Timestamp:   time.Now(),
	}
	if err := f.engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if f.entities.TaskCount() != 1 {
		t.Errorf("expected 1 task from hashtag match, got %d", f.entities.TaskCount())
	}
}

// TestOwnerOnlyFilter tests that owner_only admits the instance owner and the
// rule creator, and rejects anyone else without an execution record.
func TestOwnerOnlyFilter(t *testing.T) {
	f := newFixture(t)
	f.ruleStore.SetInstanceOwner(context.Background(), "inst-1", "owner-1")

	rule := reactionRule("rule-1", 10)
	rule.PerformerFilter = rules.PerformerOwnerOnly
	rule.CreatedBy = "creator-1"
	mustSave(t, f.ruleStore, rule)

	actors := []struct {
		actor    string
		dispatch bool
	}{
		{"owner-1", true},
		{"creator-1", true},
		{"stranger", false},
	}

	for i, tc := range actors {
		before := len(f.recorder.records)
		event := reactionEvent("m"+string(rune('0'+i)), "✅")
		event.ActorID = tc.actor
		if err := f.engine.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("HandleEvent failed: %v", err)
		}
		dispatched := len(f.recorder.records) > before
		if dispatched != tc.dispatch {
			t.Errorf("actor %s: dispatched=%v, want %v", tc.actor, dispatched, tc.dispatch)
		}
	}
}

// TestOwnerLookupFailureIsFailClosed tests that a missing owner mapping
// skips the rule silently.
func TestOwnerLookupFailureIsFailClosed(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.PerformerFilter = rules.PerformerOwnerOnly
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 0 {
		t.Errorf("expected silent skip on owner lookup failure, got %d records", len(f.recorder.records))
	}
}

// TestAllowListFilter tests allow_list admits listed actors only.
func TestAllowListFilter(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.PerformerFilter = rules.PerformerAllowList
	rule.AllowedPerformerIDs = []string{"A"}
	mustSave(t, f.ruleStore, rule)

	eventA := reactionEvent("m1", "✅")
	eventA.ActorID = "A"
	f.engine.HandleEvent(context.Background(), eventA)

	eventB := reactionEvent("m2", "✅")
	eventB.ActorID = "B"
	f.engine.HandleEvent(context.Background(), eventB)

	if len(f.recorder.records) != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", len(f.recorder.records))
	}
	if f.recorder.records[0].Trigger.ActorID != "A" {
		t.Errorf("expected actor A to dispatch, got %s", f.recorder.records[0].Trigger.ActorID)
	}
}

// TestScopedRuleIgnoresOtherInstances tests scope_instance_id filtering.
func TestScopedRuleIgnoresOtherInstances(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.ScopeInstanceID = "inst-other"
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if len(f.recorder.records) != 0 {
		t.Errorf("expected scoped rule skipped, got %d records", len(f.recorder.records))
	}
}

// TestIdempotentUpdate tests that a recurring event for the same message
// updates the existing task instead of duplicating it, and keeps exactly one
// trigger link.
func TestIdempotentUpdate(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.AllowUpdateExisting = true
	mustSave(t, f.ruleStore, rule)

	ctx := context.Background()
	if err := f.engine.HandleEvent(ctx, reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("first HandleEvent failed: %v", err)
	}
	if err := f.engine.HandleEvent(ctx, reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("second HandleEvent failed: %v", err)
	}

	if f.entities.TaskCount() != 1 {
		t.Fatalf("expected exactly 1 task after recurrence, got %d", f.entities.TaskCount())
	}
	if got := f.entities.TriggerLinkCount("m1"); got != 1 {
		t.Errorf("expected exactly 1 trigger link, got %d", got)
	}
	if len(f.recorder.records) != 2 {
		t.Fatalf("expected 2 execution records, got %d", len(f.recorder.records))
	}
	if f.recorder.records[1].Status != audit.StatusSuccess {
		t.Errorf("expected second dispatch success, got %s", f.recorder.records[1].Status)
	}
	if !strings.Contains(f.recorder.records[1].ResultSummary, "updated") {
		t.Errorf("expected update summary, got %q", f.recorder.records[1].ResultSummary)
	}

	link, err := f.entities.FindTriggerLink(ctx, "m1", "rule-1")
	if err != nil {
		t.Fatalf("FindTriggerLink failed: %v", err)
	}
	task, err := f.entities.GetTask(ctx, link.DerivedEntityID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !strings.Contains(task.Description, "Update (") {
		t.Errorf("expected an update note appended to description, got %q", task.Description)
	}
}

// TestUpdateDisabledCreatesNothingTwice tests that without
// allow_update_existing the second recurrence fails the unique link rather
// than duplicating the task.
func TestUpdateDisabledCreatesNothingTwice(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, reactionRule("rule-1", 10))

	ctx := context.Background()
	f.engine.HandleEvent(ctx, reactionEvent("m1", "✅"))
	f.engine.HandleEvent(ctx, reactionEvent("m1", "✅"))

	if f.entities.TaskCount() != 1 {
		t.Errorf("expected 1 task, got %d", f.entities.TaskCount())
	}
	if got := f.entities.TriggerLinkCount("m1"); got != 1 {
		t.Errorf("expected 1 trigger link, got %d", got)
	}
}

// TestFailureIsolation tests that an earlier rule's dispatch failure does not
// prevent later rules from dispatching successfully.
func TestFailureIsolation(t *testing.T) {
	f := &fixture{
		ruleStore: rulestore.NewMemoryStore(),
		entities:  entitystorage.NewMemoryStore(),
		recorder:  &captureRecorder{},
		publisher: &capturePublisher{},
	}
	failing := &noteFailStore{Store: f.entities}
	dispatcher := NewDispatcher(DefaultConfig(), failing, enrich.NoopService{}, f.publisher, nil, nil)
	f.engine = New(f.ruleStore, failing, dispatcher, f.recorder, nil)

	noteRule := reactionRule("rule-note", 20)
	noteRule.ActionType = rules.ActionCreateNote
	mustSave(t, f.ruleStore, noteRule)
	mustSave(t, f.ruleStore, reactionRule("rule-task", 10))

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(f.recorder.records) != 2 {
		t.Fatalf("expected 2 execution records, got %d", len(f.recorder.records))
	}
	if f.recorder.records[0].RuleID != "rule-note" || f.recorder.records[0].Status != audit.StatusFailure {
		t.Errorf("expected rule-note failure first, got %s/%s",
			f.recorder.records[0].RuleID, f.recorder.records[0].Status)
	}
	if f.recorder.records[1].RuleID != "rule-task" || f.recorder.records[1].Status != audit.StatusSuccess {
		t.Errorf("expected rule-task success second, got %s/%s",
			f.recorder.records[1].RuleID, f.recorder.records[1].Status)
	}
	if f.entities.TaskCount() != 1 {
		t.Errorf("expected the task still created, got %d", f.entities.TaskCount())
	}
}

// TestFailOpenEnrichmentBill tests that a broken enrichment service still
// yields a bill with amount 0 and the configured currency.
func TestFailOpenEnrichmentBill(t *testing.T) {
	f := &fixture{
		ruleStore: rulestore.NewMemoryStore(),
		entities:  entitystorage.NewMemoryStore(),
		recorder:  &captureRecorder{},
		publisher: &capturePublisher{},
	}
	dispatcher := NewDispatcher(DefaultConfig(), f.entities, failingEnricher{}, f.publisher, nil, nil)
	f.engine = New(f.ruleStore, f.entities, dispatcher, f.recorder, nil)

	rule := reactionRule("bill-1", 10)
	rule.ActionType = rules.ActionCreateBill
	rule.ActionConfig = map[string]string{"currency": "EUR"}
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(f.recorder.records) != 1 || f.recorder.records[0].Status != audit.StatusSuccess {
		t.Fatalf("expected one successful record, got %+v", f.recorder.records)
	}
	if len(f.publisher.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.publisher.notifications))
	}
	bill, ok := f.publisher.notifications[0].Entity.(*entity.Bill)
	if !ok {
		t.Fatalf("expected bill payload, got %T", f.publisher.notifications[0].Entity)
	}
	if bill.Amount != 0 {
		t.Errorf("expected amount 0, got %v", bill.Amount)
	}
	if bill.Currency != "EUR" {
		t.Errorf("expected configured currency EUR, got %s", bill.Currency)
	}
}

// TestUnknownActionType tests that an unregistered action type produces a
// failure record and no entity.
func TestUnknownActionType(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("rule-1", 10)
	rule.ActionType = "foo"
	// ReplaceAll bypasses save-time validation, mirroring a store populated
	// before the action type was removed.
	if err := f.ruleStore.ReplaceAll(context.Background(), []*rules.Rule{rule}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(f.recorder.records) != 1 {
		t.Fatalf("expected 1 execution record, got %d", len(f.recorder.records))
	}
	record := f.recorder.records[0]
	if record.Status != audit.StatusFailure {
		t.Errorf("expected failure, got %s", record.Status)
	}
	if record.ErrorMessage != "unknown action type: foo" {
		t.Errorf("unexpected error message %q", record.ErrorMessage)
	}
	if f.entities.TaskCount() != 0 {
		t.Errorf("expected no entities created, got %d tasks", f.entities.TaskCount())
	}
}

// TestPriorityOrdering tests that execution records follow priority order,
// highest first.
func TestPriorityOrdering(t *testing.T) {
	f := newFixture(t)
	mustSave(t, f.ruleStore, reactionRule("low", 1))
	mustSave(t, f.ruleStore, reactionRule("high", 100))
	mustSave(t, f.ruleStore, reactionRule("mid", 50))

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	want := []string{"high", "mid", "low"}
	if len(f.recorder.records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(f.recorder.records))
	}
	for i, id := range want {
		if f.recorder.records[i].RuleID != id {
			t.Errorf("record %d: expected rule %s, got %s", i, id, f.recorder.records[i].RuleID)
		}
	}
}

// TestFetchFailureIsFatal tests that a rule store outage aborts the whole
// event evaluation with a FetchError.
func TestFetchFailureIsFatal(t *testing.T) {
	f := newFixture(t, func(f *fixture) {
		failing := &fetchFailStore{MemoryStore: f.ruleStore}
		dispatcher := NewDispatcher(DefaultConfig(), f.entities, enrich.NoopService{}, f.publisher, nil, nil)
		f.engine = New(failing, f.entities, dispatcher, f.recorder, nil)
	})

	err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅"))
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

type fetchFailStore struct {
	*rulestore.MemoryStore
}

func (s *fetchFailStore) ListActiveRules(ctx context.Context, triggerType rules.TriggerType, instanceID string) ([]*rules.Rule, error) {
	return nil, errors.New("rule store unreachable")
}

// TestCalendarEventDefaults tests derived end time and meeting link logic.
func TestCalendarEventDefaults(t *testing.T) {
	f := newFixture(t)
	rule := reactionRule("cal-1", 10)
	rule.ActionType = rules.ActionCreateCalendarEvent
	rule.ActionConfig = map[string]string{
		"start_time": "2026-09-01T14:00:00Z",
		"attendees":  "ana@example.com, bob@example.com",
	}
	mustSave(t, f.ruleStore, rule)

	if err := f.engine.HandleEvent(context.Background(), reactionEvent("m1", "✅")); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(f.publisher.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.publisher.notifications))
	}
	calEvent, ok := f.publisher.notifications[0].Entity.(*entity.CalendarEvent)
	if !ok {
		t.Fatalf("expected calendar event payload, got %T", f.publisher.notifications[0].Entity)
	}

	wantStart, _ := time.Parse(time.RFC3339, "2026-09-01T14:00:00Z")
	if !calEvent.StartTime.Equal(wantStart) {
		t.Errorf("unexpected start time %v", calEvent.StartTime)
	}
	if !calEvent.EndTime.Equal(wantStart.Add(60 * time.Minute)) {
		t.Errorf("expected end = start + 60m, got %v", calEvent.EndTime)
	}
	if !calEvent.NeedsMeetingLink {
		t.Error("expected meeting link with 2 attendees")
	}
}

// TestSendMessageAction tests templated replies through the messenger.
func TestSendMessageAction(t *testing.T) {
	sent := make([]string, 0, 1)
	messenger := messengerFunc(func(ctx context.Context, instanceID, chatID, text string) error {
		sent = append(sent, text)
		return nil
	})

	f := &fixture{
		ruleStore: rulestore.NewMemoryStore(),
		entities:  entitystorage.NewMemoryStore(),
		recorder:  &captureRecorder{},
		publisher: &capturePublisher{},
	}
	dispatcher := NewDispatcher(DefaultConfig(), f.entities, enrich.NoopService{}, f.publisher, messenger, nil)
	f.engine = New(f.ruleStore, f.entities, dispatcher, f.recorder, nil)

	rule := reactionRule("msg-1", 10)
	rule.ActionType = rules.ActionSendMessage
	rule.ActionConfig = map[string]string{"message": "Noted, {{sender}}!"}
	mustSave(t, f.ruleStore, rule)

	event := reactionEvent("m1", "✅")
	event.SenderName = "Ana"
	if err := f.engine.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if len(sent) != 1 || sent[0] != "Noted, Ana!" {
		t.Errorf("unexpected sent messages %v", sent)
	}
}

type messengerFunc func(ctx context.Context, instanceID, chatID, text string) error

func (f messengerFunc) SendMessage(ctx context.Context, instanceID, chatID, text string) error {
	return f(ctx, instanceID, chatID, text)
}
