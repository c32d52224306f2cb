package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"focusai-rest-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// lockKeyPrefix namespaces daily lock records in Redis.
	lockKeyPrefix = "focusai:lock:"

	// lockExpiry keeps records two full days so "yesterday" is still
	// readable across timezones before Redis ages it out.
	lockExpiry = 48 * time.Hour
)

// RedisDailyLockRepository implements DailyLockRepository on Redis.
// Records carry a native expiry, so DeleteOlderThan has nothing to do.
// Use this when multiple API instances must agree on a user's daily lock.
type RedisDailyLockRepository struct {
	client *redis.Client
}

// NewRedisDailyLockRepository creates a Redis-backed lock store and
// verifies the connection.
func NewRedisDailyLockRepository(client *redis.Client) (*RedisDailyLockRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisDailyLockRepository{client: client}, nil
}

// Load returns the locked items for the key, or ErrLockNotFound.
func (r *RedisDailyLockRepository) Load(ctx context.Context, key model.LockKey) ([]model.ContentItem, error) {
	data, err := r.client.Get(ctx, lockKeyPrefix+key.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load daily lock: %w", err)
	}

	var items []model.ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt daily lock record %s: %w", key.String(), err)
	}
	return items, nil
}

// Store upserts the locked items for the key (last write wins).
func (r *RedisDailyLockRepository) Store(ctx context.Context, key model.LockKey, items []model.ContentItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize daily lock items: %w", err)
	}

	if err := r.client.Set(ctx, lockKeyPrefix+key.String(), data, lockExpiry).Err(); err != nil {
		return fmt.Errorf("failed to store daily lock: %w", err)
	}
	return nil
}

// DeleteOlderThan is a no-op: Redis records expire natively.
func (r *RedisDailyLockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// Stats returns statistics about the lock store.
func (r *RedisDailyLockRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "redis"}

	keys, err := r.client.Keys(ctx, lockKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}
	stats["lock_records"] = len(keys)

	return stats, nil
}

// Close closes the Redis connection.
func (r *RedisDailyLockRepository) Close() error {
	return r.client.Close()
}

// Ensure RedisDailyLockRepository implements DailyLockRepository
var _ DailyLockRepository = (*RedisDailyLockRepository)(nil)
