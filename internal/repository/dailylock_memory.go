package repository

import (
	"context"
	"sync"
	"time"

	"focusai-rest-api/internal/model"
)

// MemoryDailyLockRepository is a mutex-guarded in-process lock store.
// Used in tests and as the degraded mode when no durable backend is
// reachable at boot: locks then survive only until restart, which is
// acceptable since a restart at worst costs one extra upstream fetch.
type MemoryDailyLockRepository struct {
	mu    sync.RWMutex
	locks map[string]memoryLockRecord
}

type memoryLockRecord struct {
	items     []model.ContentItem
	createdAt time.Time
}

// NewMemoryDailyLockRepository creates an empty in-memory lock store.
func NewMemoryDailyLockRepository() *MemoryDailyLockRepository {
	return &MemoryDailyLockRepository{
		locks: make(map[string]memoryLockRecord),
	}
}

// Load returns the locked items for the key, or ErrLockNotFound.
func (r *MemoryDailyLockRepository) Load(ctx context.Context, key model.LockKey) ([]model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.locks[key.String()]
	if !ok {
		return nil, ErrLockNotFound
	}
	items := make([]model.ContentItem, len(rec.items))
	copy(items, rec.items)
	return items, nil
}

// Store upserts the locked items for the key.
func (r *MemoryDailyLockRepository) Store(ctx context.Context, key model.LockKey, items []model.ContentItem) error {
	stored := make([]model.ContentItem, len(items))
	copy(stored, items)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.locks[key.String()] = memoryLockRecord{items: stored, createdAt: time.Now()}
	return nil
}

// DeleteOlderThan removes lock records created before cutoff.
func (r *MemoryDailyLockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for key, rec := range r.locks {
		if rec.createdAt.Before(cutoff) {
			delete(r.locks, key)
			deleted++
		}
	}
	return deleted, nil
}

// Stats returns statistics about the lock store.
func (r *MemoryDailyLockRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"backend":      "memory",
		"lock_records": len(r.locks),
	}, nil
}

// Close is a no-op for the in-memory store.
func (r *MemoryDailyLockRepository) Close() error { return nil }

// Ensure MemoryDailyLockRepository implements DailyLockRepository
var _ DailyLockRepository = (*MemoryDailyLockRepository)(nil)
