package storage

import (
	"context"
	"sync"
	"time"

	"automata-hq/triton/pkg/audit"
)

// MemoryStorage implements audit.Storage using an in-memory slice.
// Intended for tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*audit.ExecutionRecord
}

// NewMemoryStorage creates a new in-memory execution record store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Append writes one record.
func (s *MemoryStorage) Append(ctx context.Context, record *audit.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

// List returns records matching the query, newest first.
func (s *MemoryStorage) List(ctx context.Context, query *audit.Query) ([]*audit.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.ExecutionRecord
	// Stored in append order; walk backwards for newest-first.
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if query != nil && !matches(r, query) {
			continue
		}
		copied := *r
		out = append(out, &copied)
		if query != nil && query.Limit > 0 && len(out) >= query.Limit {
			break
		}
	}
	return out, nil
}

func matches(r *audit.ExecutionRecord, q *audit.Query) bool {
	if q.RuleID != "" && r.RuleID != q.RuleID {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.Since.IsZero() && r.ExecutedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && r.ExecutedAt.After(q.Until) {
		return false
	}
	return true
}

// Count returns the total number of stored records.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteBefore removes records executed before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if r.ExecutedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// DeleteOldest removes the n oldest records.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.records) == 0 {
		return 0, nil
	}
	if n > int64(len(s.records)) {
		n = int64(len(s.records))
	}
	s.records = s.records[n:]
	return n, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStorage) Close() error {
	return nil
}
