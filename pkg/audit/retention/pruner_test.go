package retention

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"automata-hq/triton/pkg/audit"
	"automata-hq/triton/pkg/audit/storage"
)

func seed(t *testing.T, store audit.Storage, ages ...time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	for _, age := range ages {
		err := store.Append(ctx, &audit.ExecutionRecord{
			ID:         uuid.NewString(),
			RuleID:     "rule-1",
			Status:     audit.StatusSuccess,
			ExecutedAt: now.Add(-age),
		})
		if err != nil {
			t.Fatalf("seed append failed: %v", err)
		}
	}
}

// TestPruneByAge tests that records older than the retention window are
// deleted and newer ones kept.
func TestPruneByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store,
		100*24*time.Hour,
		95*24*time.Hour,
		10*24*time.Hour,
		time.Hour,
	)

	pruner := NewPruner(store, &Config{RetentionDays: 30})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, _ := store.Count(context.Background())
	if count != 2 {
		t.Errorf("expected 2 remaining, got %d", count)
	}
}

// TestPruneByCount tests the max-record cap keeps only the newest records.
func TestPruneByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 2})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	got, _ := store.List(context.Background(), &audit.Query{})
	if len(got) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(got))
	}
	for _, r := range got {
		if time.Since(r.ExecutedAt) > 3*time.Hour {
			t.Errorf("an old record survived the cap: %v", r.ExecutedAt)
		}
	}
}

// TestPruneDisabled tests that zero settings delete nothing.
func TestPruneDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 1000*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 0})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}

// TestSchedulerLifecycle tests start, next-run reporting and stop.
func TestSchedulerLifecycle(t *testing.T) {
	store := storage.NewMemoryStorage()
	pruner := NewPruner(store, &Config{RetentionDays: 30, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("expected scheduler to be running")
	}
	if pruner.NextPruning() == nil {
		t.Error("expected a next pruning time")
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("expected scheduler to be stopped")
	}
}

// TestSchedulerRejectsBadCron tests invalid cron expressions fail Start.
func TestSchedulerRejectsBadCron(t *testing.T) {
	store := storage.NewMemoryStorage()
	pruner := NewPruner(store, &Config{PruneSchedule: "not a cron"})

	if err := pruner.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
