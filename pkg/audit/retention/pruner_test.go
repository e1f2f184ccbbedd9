package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/strata/pkg/audit"
)

// fakeStorage tracks pruning calls without a real database.
type fakeStorage struct {
	mu           sync.Mutex
	deleteBefore int64
	deleteOldest int64
	beforeCutoff time.Time
	oldestKeep   int64
	deleteErr    error
	beforeCalled bool
	oldestCalled bool
}

func (f *fakeStorage) Insert(context.Context, *audit.QueryRecord) error { return nil }

func (f *fakeStorage) QueryRange(context.Context, time.Time, time.Time, int) ([]*audit.QueryRecord, error) {
	return nil, nil
}

func (f *fakeStorage) Count(context.Context) (int64, error) { return 0, nil }

func (f *fakeStorage) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeCalled = true
	f.beforeCutoff = cutoff
	return f.deleteBefore, f.deleteErr
}

func (f *fakeStorage) DeleteOldest(_ context.Context, keep int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oldestCalled = true
	f.oldestKeep = keep
	return f.deleteOldest, f.deleteErr
}

func (f *fakeStorage) Close() error { return nil }

func TestPruner_Prune_ByAge(t *testing.T) {
	storage := &fakeStorage{deleteBefore: 7}
	pruner := NewPruner(storage, &Config{RetentionDays: 30})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 7 {
		t.Errorf("Prune() = %d, want 7", deleted)
	}

	if !storage.beforeCalled {
		t.Error("DeleteBefore not called")
	}
	if storage.oldestCalled {
		t.Error("DeleteOldest called without a max_records cap")
	}

	wantCutoff := time.Now().AddDate(0, 0, -30)
	if storage.beforeCutoff.Sub(wantCutoff) > time.Minute || wantCutoff.Sub(storage.beforeCutoff) > time.Minute {
		t.Errorf("cutoff = %v, want ~%v", storage.beforeCutoff, wantCutoff)
	}
}

func TestPruner_Prune_ByCount(t *testing.T) {
	storage := &fakeStorage{deleteOldest: 100}
	pruner := NewPruner(storage, &Config{RetentionDays: 0, MaxRecords: 5000})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 100 {
		t.Errorf("Prune() = %d, want 100", deleted)
	}

	if storage.beforeCalled {
		t.Error("DeleteBefore called with retention disabled")
	}
	if storage.oldestKeep != 5000 {
		t.Errorf("DeleteOldest keep = %d, want 5000", storage.oldestKeep)
	}
}

func TestPruner_Prune_BothPhases(t *testing.T) {
	storage := &fakeStorage{deleteBefore: 3, deleteOldest: 2}
	pruner := NewPruner(storage, &Config{RetentionDays: 7, MaxRecords: 100})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 5 {
		t.Errorf("Prune() = %d, want 5", deleted)
	}
}

func TestPruner_Prune_StorageError(t *testing.T) {
	storage := &fakeStorage{deleteErr: errors.New("locked")}
	pruner := NewPruner(storage, &Config{RetentionDays: 7})

	if _, err := pruner.Prune(context.Background()); err == nil {
		t.Fatal("Prune() expected error, got nil")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	pruner := NewPruner(&fakeStorage{}, &Config{RetentionDays: 7, PruneSchedule: "not a cron"})
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error for invalid schedule, got nil")
	}
}

func TestScheduler_NoSchedule(t *testing.T) {
	pruner := NewPruner(&fakeStorage{}, &Config{RetentionDays: 7})
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v, want nil with empty schedule", err)
	}
	scheduler.Stop()
}

func TestScheduler_StartStop(t *testing.T) {
	pruner := NewPruner(&fakeStorage{}, &Config{RetentionDays: 7, PruneSchedule: "0 3 * * *"})
	scheduler := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	scheduler.Stop()

	// Stop is idempotent.
	scheduler.Stop()
}
