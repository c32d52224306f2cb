package repository

import (
	"context"
	"time"

	"focusai-rest-api/internal/model"
)

// RepoError is a sentinel error type for repository lookups.
type RepoError string

func (e RepoError) Error() string { return string(e) }

const (
	// ErrLockNotFound indicates no daily lock record exists for the key.
	ErrLockNotFound RepoError = "daily lock not found"

	// ErrInsightNotFound indicates no stored insight matches the ID.
	ErrInsightNotFound RepoError = "insight not found"
)

// DailyLockRepository persists the exact card list a free user saw, keyed by
// (user, kind, day, profession). Store is a last-write-wins upsert so a
// forced refresh re-locks the day and concurrent first requests stay safe.
type DailyLockRepository interface {
	// Load returns the locked items for the key, or ErrLockNotFound.
	Load(ctx context.Context, key model.LockKey) ([]model.ContentItem, error)

	// Store upserts the locked items for the key.
	Store(ctx context.Context, key model.LockKey, items []model.ContentItem) error

	// DeleteOlderThan removes lock records created before cutoff.
	// Backends with native expiry may report 0 without doing work.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Stats returns statistics about the lock store.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// PremiumRepository reads paid-entitlement state. The serving path treats it
// as best effort: any error downgrades the caller to the free tier.
type PremiumRepository interface {
	// GetPremiumExpiry returns the entitlement expiry for the user,
	// or nil when the user has never held premium.
	GetPremiumExpiry(ctx context.Context, userID string) (*time.Time, error)
}

// InsightRepository stores generated insight cards for the listing, detail
// and daily share surfaces.
type InsightRepository interface {
	// SaveInsights appends generated cards.
	SaveInsights(ctx context.Context, items []model.ContentItem) error

	// GetInsights returns cards newest first.
	GetInsights(ctx context.Context, limit, offset int) ([]model.ContentItem, error)

	// GetInsightByID returns one card, or ErrInsightNotFound.
	GetInsightByID(ctx context.Context, id string) (*model.ContentItem, error)

	// CountInsights returns the total number of stored cards.
	CountInsights(ctx context.Context) (int64, error)

	// GetInsightsByDate returns up to limit cards stamped with the ISO day.
	GetInsightsByDate(ctx context.Context, date string, limit int) ([]model.ContentItem, error)

	// Close closes the repository connection.
	Close() error
}
