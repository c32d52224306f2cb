package service

import (
	"context"
	"errors"
	"log"
	"time"

	"focusai-rest-api/internal/cache"
	"focusai-rest-api/internal/metrics"
	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/producer"
	"focusai-rest-api/internal/repository"
)

// Response sources, reported in every fetch payload so clients and
// dashboards can see how a request was satisfied.
const (
	SourceDailyLock = "daily-lock"
	SourceCache     = "cache"
	SourceLiveFetch = "live-fetch"
	SourceFallback  = "fallback"
	SourceError     = "error"
)

// FetchRequest is one incoming tools/cases fetch.
type FetchRequest struct {
	UserID       string
	Kind         model.Kind
	Profession   string
	ForceRefresh bool
}

// FetchResult is the response envelope for content fetches. It always
// ships with HTTP 200; degradation shows up in Source, never as a 5xx.
type FetchResult struct {
	Items        []model.ContentItem `json:"items"`
	Profession   string              `json:"profession"`
	Source       string              `json:"source"`
	TotalFetched int                 `json:"total_fetched,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// InsightService decides, per request, whether content comes from the
// user's daily lock, the surplus cache, or a fresh upstream fetch.
//
// Free users get one stable result set per kind per day; premium users
// bypass the lock entirely and get unlimited regeneration.
type InsightService struct {
	cache    *cache.ContentCache
	locks    repository.DailyLockRepository
	insights repository.InsightRepository
	premium  *PremiumService
	producer producer.BatchProducer
	metrics  *metrics.Collector

	now func() time.Time
}

// NewInsightService wires the serving path. insights may be nil (cards are
// then not persisted for the list/share surfaces); everything else is
// required.
func NewInsightService(
	contentCache *cache.ContentCache,
	locks repository.DailyLockRepository,
	insights repository.InsightRepository,
	premium *PremiumService,
	batchProducer producer.BatchProducer,
	collector *metrics.Collector,
) *InsightService {
	if contentCache == nil || locks == nil || batchProducer == nil {
		return nil
	}
	return &InsightService{
		cache:    contentCache,
		locks:    locks,
		insights: insights,
		premium:  premium,
		producer: batchProducer,
		metrics:  collector,
		now:      time.Now,
	}
}

// Fetch runs the full decision procedure for one tools/cases request.
func (s *InsightService) Fetch(ctx context.Context, req FetchRequest) FetchResult {
	isPremium := s.premium.IsPremium(ctx, req.UserID)
	lockKey := model.NewLockKey(req.UserID, req.Kind, req.Profession, s.now())

	// Free users without forceRefresh are pinned to their first result
	// set of the day: no cache or upstream interaction at all.
	if !isPremium && !req.ForceRefresh {
		items, err := s.locks.Load(ctx, lockKey)
		if err == nil {
			s.metrics.RecordFetchServed(string(req.Kind), SourceDailyLock)
			return FetchResult{Items: items, Profession: req.Profession, Source: SourceDailyLock}
		}
		if !errors.Is(err, repository.ErrLockNotFound) {
			log.Printf("[InsightService] Warning: daily lock read failed for %s: %v", lockKey.String(), err)
			s.metrics.RecordLockStoreError()
		}
	}

	// Fast path: serve out of the retained surplus.
	if !req.ForceRefresh {
		items, needFetch := s.cache.Get(req.Kind, req.Profession)
		if !needFetch {
			s.metrics.RecordCacheHit(string(req.Kind))
			if !isPremium {
				s.writeLock(ctx, lockKey, items)
			}
			s.metrics.RecordFetchServed(string(req.Kind), SourceCache)
			return FetchResult{Items: items, Profession: req.Profession, Source: SourceCache}
		}
		s.metrics.RecordCacheMiss(string(req.Kind))
	}

	// Slow path: one upstream call covers this response plus refills.
	seed := s.cache.NextSeed(req.Kind, req.Profession)
	start := s.now()
	batch, err := s.producer.FetchBatch(ctx, req.Kind, req.Profession, seed, s.cache.FetchCount())
	s.metrics.RecordProducerLatency(time.Since(start))
	if err != nil {
		return s.degrade(ctx, req, err)
	}

	display := s.cache.DisplayCount()
	if display > len(batch) {
		display = len(batch)
	}
	shown := batch[:display]
	s.cache.Set(req.Kind, req.Profession, batch[display:], seed)

	if !isPremium {
		s.writeLock(ctx, lockKey, shown)
	}

	s.metrics.RecordFetchServed(string(req.Kind), SourceLiveFetch)
	return FetchResult{
		Items:        shown,
		Profession:   req.Profession,
		Source:       SourceLiveFetch,
		TotalFetched: len(batch),
	}
}

// degrade maps a producer failure to the offline card set. Upstream
// flakiness must never surface as a 5xx on this feature.
func (s *InsightService) degrade(ctx context.Context, req FetchRequest, cause error) FetchResult {
	op := "fetch"
	var prodErr *producer.Error
	if errors.As(cause, &prodErr) {
		op = prodErr.Op
	}
	s.metrics.RecordProducerFailure(op)
	log.Printf("[InsightService] %s fetch failed for profession=%q, serving fallback: %v", req.Kind, req.Profession, cause)

	items := producer.FallbackItems(req.Kind, req.Profession, s.cache.DisplayCount())
	if len(items) == 0 {
		s.metrics.RecordFetchServed(string(req.Kind), SourceError)
		return FetchResult{Items: []model.ContentItem{}, Profession: req.Profession, Source: SourceError, Error: cause.Error()}
	}
	s.metrics.RecordFetchServed(string(req.Kind), SourceFallback)
	return FetchResult{Items: items, Profession: req.Profession, Source: SourceFallback}
}

// writeLock persists a free user's daily snapshot. Best effort: the
// response is already correct in memory, so a store failure only costs
// an extra upstream call on the user's next request.
func (s *InsightService) writeLock(ctx context.Context, key model.LockKey, items []model.ContentItem) {
	if err := s.locks.Store(ctx, key, items); err != nil {
		log.Printf("[InsightService] Warning: daily lock write failed for %s: %v", key.String(), err)
		s.metrics.RecordLockStoreError()
	}
}
