package service

import (
	"context"
	"testing"
	"time"

	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/repository"
)

func TestRetentionCleanupDeletesOldLocks(t *testing.T) {
	locks := repository.NewMemoryDailyLockRepository()

	oldKey := model.NewLockKey("u1", model.KindTools, "teacher", time.Now())
	locks.Store(context.Background(), oldKey, []model.ContentItem{{ID: "a"}})

	s := NewRetentionScheduler(locks, RetentionConfig{RetentionDays: -1})
	s.runCleanup()

	// With a negative retention window the cutoff is in the future, so
	// every record qualifies. The scheduler itself never runs with a
	// non-positive window; this just exercises the cleanup path.
	if _, err := locks.Load(context.Background(), oldKey); err == nil {
		t.Error("expected record to be deleted")
	}
}

func TestRetentionSchedulerDisabled(t *testing.T) {
	locks := repository.NewMemoryDailyLockRepository()
	s := NewRetentionScheduler(locks, RetentionConfig{RetentionDays: 0, CleanupInterval: time.Millisecond})

	// Start must not spin up the loop when retention is disabled.
	s.Start()
	s.Stop()

	key := model.NewLockKey("u1", model.KindTools, "teacher", time.Now())
	locks.Store(context.Background(), key, nil)
	time.Sleep(5 * time.Millisecond)

	if _, err := locks.Load(context.Background(), key); err != nil {
		t.Errorf("record deleted despite disabled retention: %v", err)
	}
}

func TestRetentionStopIsIdempotent(t *testing.T) {
	s := NewRetentionScheduler(repository.NewMemoryDailyLockRepository(), RetentionConfig{RetentionDays: 30})
	s.Start()
	s.Stop()
	s.Stop()
}
