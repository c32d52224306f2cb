package service

import (
	"context"
	"errors"
	"log"
	"time"

	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/repository"
)

// GenerateNews runs the daily news variant of the fetch procedure: no
// surplus is retained (one call produces exactly one display page), every
// non-locked request is a live fetch, and same-URL duplicates within the
// batch are dropped before anything is persisted or returned.
func (s *InsightService) GenerateNews(ctx context.Context, req FetchRequest) FetchResult {
	kind := model.KindNews
	isPremium := s.premium.IsPremium(ctx, req.UserID)
	lockKey := model.NewLockKey(req.UserID, kind, req.Profession, s.now())

	if !isPremium && !req.ForceRefresh {
		items, err := s.locks.Load(ctx, lockKey)
		if err == nil {
			s.metrics.RecordFetchServed(string(kind), SourceDailyLock)
			return FetchResult{Items: items, Profession: req.Profession, Source: SourceDailyLock}
		}
		if !errors.Is(err, repository.ErrLockNotFound) {
			log.Printf("[InsightService] Warning: daily lock read failed for %s: %v", lockKey.String(), err)
			s.metrics.RecordLockStoreError()
		}
	}

	seed := s.cache.NextSeed(kind, req.Profession)
	start := s.now()
	batch, err := s.producer.FetchBatch(ctx, kind, req.Profession, seed, s.cache.DisplayCount())
	s.metrics.RecordProducerLatency(time.Since(start))
	if err != nil {
		return s.degrade(ctx, FetchRequest{UserID: req.UserID, Kind: kind, Profession: req.Profession}, err)
	}

	items := dedupByURL(batch)

	// No surplus to retain; an empty Set still advances the stored seed
	// so tomorrow's query template differs from today's.
	s.cache.Set(kind, req.Profession, nil, seed)

	if s.insights != nil {
		if err := s.insights.SaveInsights(ctx, items); err != nil {
			log.Printf("[InsightService] Warning: failed to persist generated news: %v", err)
		}
	}

	if !isPremium {
		s.writeLock(ctx, lockKey, items)
	}

	s.metrics.RecordFetchServed(string(kind), SourceLiveFetch)
	return FetchResult{
		Items:        items,
		Profession:   req.Profession,
		Source:       SourceLiveFetch,
		TotalFetched: len(batch),
	}
}

// dedupByURL drops items whose URL exactly matches an earlier item's,
// keeping the first occurrence and preserving order. Items without a URL
// are always kept.
func dedupByURL(items []model.ContentItem) []model.ContentItem {
	seen := make(map[string]bool, len(items))
	out := make([]model.ContentItem, 0, len(items))
	for _, item := range items {
		if item.URL != "" {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
		}
		out = append(out, item)
	}
	return out
}
