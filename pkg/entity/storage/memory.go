package storage

import (
	"context"
	"sync"

	"automata-hq/triton/pkg/entity"
)

// MemoryStore implements entity.Store using in-memory maps.
// It is intended for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[string]*entity.Task
	events map[string]*entity.CalendarEvent
	bills  map[string]*entity.Bill
	notes  map[string]*entity.Note
	labels map[string]*entity.Label
	links  map[string]*entity.DerivedLink
}

// NewMemoryStore creates a new in-memory entity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[string]*entity.Task),
		events: make(map[string]*entity.CalendarEvent),
		bills:  make(map[string]*entity.Bill),
		notes:  make(map[string]*entity.Note),
		labels: make(map[string]*entity.Label),
		links:  make(map[string]*entity.DerivedLink),
	}
}

// CreateTask persists a new task.
func (s *MemoryStore) CreateTask(ctx context.Context, task *entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// GetTask returns the task with the given ID, or entity.ErrNotFound.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

// UpdateTask replaces the stored task.
func (s *MemoryStore) UpdateTask(ctx context.Context, task *entity.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return entity.ErrNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

// CreateCalendarEvent persists a new calendar event.
func (s *MemoryStore) CreateCalendarEvent(ctx context.Context, event *entity.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *event
	s.events[event.ID] = &copied
	return nil
}

// CreateBill persists a new bill.
func (s *MemoryStore) CreateBill(ctx context.Context, bill *entity.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *bill
	s.bills[bill.ID] = &copied
	return nil
}

// CreateNote persists a new note.
func (s *MemoryStore) CreateNote(ctx context.Context, note *entity.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

// AddLabel attaches a label to a chat or message.
func (s *MemoryStore) AddLabel(ctx context.Context, label *entity.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *label
	s.labels[label.ID] = &copied
	return nil
}

// UpsertDerivedLink inserts the link if no trigger link exists yet for
// (TriggeringMessageID, RuleID). Check and insert happen under one lock hold,
// matching the atomicity the SQLite backend gets from its unique index.
func (s *MemoryStore) UpsertDerivedLink(ctx context.Context, link *entity.DerivedLink) (*entity.DerivedLink, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.links {
		if existing.LinkType == entity.LinkTrigger &&
			existing.TriggeringMessageID == link.TriggeringMessageID &&
			existing.RuleID == link.RuleID {
			copied := *existing
			return &copied, false, nil
		}
	}

	copied := *link
	copied.LinkType = entity.LinkTrigger
	s.links[link.ID] = &copied

	result := copied
	return &result, true, nil
}

// FindTriggerLink returns the trigger link for the message and rule.
func (s *MemoryStore) FindTriggerLink(ctx context.Context, triggeringMessageID, ruleID string) (*entity.DerivedLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, link := range s.links {
		if link.LinkType == entity.LinkTrigger &&
			link.TriggeringMessageID == triggeringMessageID &&
			link.RuleID == ruleID {
			copied := *link
			return &copied, nil
		}
	}
	return nil, entity.ErrNotFound
}

// RecordUpdateLink appends an update-type link.
func (s *MemoryStore) RecordUpdateLink(ctx context.Context, link *entity.DerivedLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *link
	copied.LinkType = entity.LinkUpdate
	s.links[link.ID] = &copied
	return nil
}

// DeleteDerivedLink removes a link by ID.
func (s *MemoryStore) DeleteDerivedLink(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.links, id)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// TaskCount returns the number of stored tasks. Test helper.
func (s *MemoryStore) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// TriggerLinkCount returns the number of trigger-type links for a message.
// Test helper.
func (s *MemoryStore) TriggerLinkCount(triggeringMessageID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, link := range s.links {
		if link.LinkType == entity.LinkTrigger && link.TriggeringMessageID == triggeringMessageID {
			n++
		}
	}
	return n
}
