package store

import (
	"context"
	"sync"

	"automata-hq/triton/pkg/rules"
)

// MemoryStore implements Store using in-memory maps.
// Suitable for tests and for deployments whose rules come entirely from the
// file source (the watcher replaces the set on every reload).
type MemoryStore struct {
	mu     sync.RWMutex
	rules  map[string]*rules.Rule
	owners map[string]string
}

// NewMemoryStore creates a new in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:  make(map[string]*rules.Rule),
		owners: make(map[string]string),
	}
}

// ListActiveRules returns matching active rules in evaluation order.
func (s *MemoryStore) ListActiveRules(ctx context.Context, triggerType rules.TriggerType, instanceID string) ([]*rules.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*rules.Rule
	for _, r := range s.rules {
		if !r.IsActive || r.TriggerType != triggerType {
			continue
		}
		if r.ScopeInstanceID != "" && r.ScopeInstanceID != instanceID {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}

	rules.SortByPriority(out)
	return out, nil
}

// GetRule returns a rule by ID.
func (s *MemoryStore) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	copied := *r
	return &copied, nil
}

// SaveRule validates and stores a rule.
func (s *MemoryStore) SaveRule(ctx context.Context, rule *rules.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

// DeleteRule removes a rule by ID.
func (s *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rules, id)
	return nil
}

// ReplaceAll swaps the full rule set.
func (s *MemoryStore) ReplaceAll(ctx context.Context, list []*rules.Rule) error {
	next := make(map[string]*rules.Rule, len(list))
	for _, r := range list {
		copied := *r
		next[r.ID] = &copied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = next
	return nil
}

// GetInstanceOwner resolves the owner actor of an instance.
func (s *MemoryStore) GetInstanceOwner(ctx context.Context, instanceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[instanceID]
	if !ok {
		return "", ErrOwnerNotFound
	}
	return owner, nil
}

// SetInstanceOwner records the owner actor of an instance.
func (s *MemoryStore) SetInstanceOwner(ctx context.Context, instanceID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners[instanceID] = ownerID
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
