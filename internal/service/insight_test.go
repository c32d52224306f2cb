package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"focusai-rest-api/internal/cache"
	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/producer"
	"focusai-rest-api/internal/repository"
)

// fakeProducer returns deterministic batches and records every call.
type fakeProducer struct {
	calls int
	seeds []int
	sizes []int
	err   error

	// batch overrides the generated items when set.
	batch []model.ContentItem
}

func (f *fakeProducer) FetchBatch(ctx context.Context, kind model.Kind, profession string, seed, count int) ([]model.ContentItem, error) {
	f.calls++
	f.seeds = append(f.seeds, seed)
	f.sizes = append(f.sizes, count)
	if f.err != nil {
		return nil, f.err
	}
	if f.batch != nil {
		return f.batch, nil
	}
	items := make([]model.ContentItem, count)
	for i := range items {
		items[i] = model.ContentItem{
			ID:    fmt.Sprintf("call%d-item%d", f.calls, i),
			Title: fmt.Sprintf("card %d/%d", f.calls, i),
			URL:   fmt.Sprintf("https://example.com/%d/%d", f.calls, i),
		}
	}
	return items, nil
}

// fakePremiumRepo marks listed users as premium until far future.
type fakePremiumRepo struct {
	premium map[string]bool
	err     error
}

func (f *fakePremiumRepo) GetPremiumExpiry(ctx context.Context, userID string) (*time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.premium[userID] {
		exp := time.Now().Add(24 * time.Hour)
		return &exp, nil
	}
	return nil, nil
}

func newTestService(t *testing.T, prod producer.BatchProducer, premiumUsers ...string) (*InsightService, *repository.MemoryDailyLockRepository) {
	t.Helper()

	locks := repository.NewMemoryDailyLockRepository()
	premiumSet := make(map[string]bool, len(premiumUsers))
	for _, u := range premiumUsers {
		premiumSet[u] = true
	}
	premium := NewPremiumService(&fakePremiumRepo{premium: premiumSet})

	contentCache := cache.NewContentCache(cache.Options{DisplayCount: 6, FetchCount: 18, TTL: 30 * time.Minute})
	svc := NewInsightService(contentCache, locks, nil, premium, prod, nil)
	if svc == nil {
		t.Fatal("NewInsightService returned nil")
	}
	return svc, locks
}

func itemIDs(items []model.ContentItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func sameIDs(a, b []model.ContentItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func TestFirstFetchIsLive(t *testing.T) {
	prod := &fakeProducer{}
	svc, _ := newTestService(t, prod)

	res := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})
	if res.Source != SourceLiveFetch {
		t.Errorf("Source = %s, want %s", res.Source, SourceLiveFetch)
	}
	if len(res.Items) != 6 {
		t.Errorf("got %d items, want 6", len(res.Items))
	}
	if res.TotalFetched != 18 {
		t.Errorf("TotalFetched = %d, want 18", res.TotalFetched)
	}
	if prod.calls != 1 {
		t.Errorf("producer called %d times, want 1", prod.calls)
	}
	if prod.sizes[0] != 18 {
		t.Errorf("producer asked for %d items, want 18", prod.sizes[0])
	}
}

func TestFreeUserGetsStableDailySet(t *testing.T) {
	prod := &fakeProducer{}
	svc, _ := newTestService(t, prod)
	req := FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"}

	first := svc.Fetch(context.Background(), req)
	if first.Source != SourceLiveFetch {
		t.Fatalf("first Source = %s, want %s", first.Source, SourceLiveFetch)
	}

	for i := 0; i < 3; i++ {
		again := svc.Fetch(context.Background(), req)
		if again.Source != SourceDailyLock {
			t.Errorf("repeat %d: Source = %s, want %s", i, again.Source, SourceDailyLock)
		}
		if !sameIDs(first.Items, again.Items) {
			t.Errorf("repeat %d: items changed: %v vs %v", i, itemIDs(first.Items), itemIDs(again.Items))
		}
	}

	if prod.calls != 1 {
		t.Errorf("producer called %d times, want 1 (locked requests must not fetch)", prod.calls)
	}
}

func TestPremiumUserBypassesDailyLock(t *testing.T) {
	prod := &fakeProducer{}
	svc, locks := newTestService(t, prod, "vip")
	req := FetchRequest{UserID: "vip", Kind: model.KindTools, Profession: "teacher"}

	first := svc.Fetch(context.Background(), req)
	second := svc.Fetch(context.Background(), req)

	if first.Source != SourceLiveFetch {
		t.Errorf("first Source = %s, want %s", first.Source, SourceLiveFetch)
	}
	if second.Source != SourceCache {
		t.Errorf("second Source = %s, want %s (surplus should serve the refresh)", second.Source, SourceCache)
	}
	if sameIDs(first.Items, second.Items) {
		t.Error("premium refresh returned the same items")
	}

	// Premium requests never touch the lock store.
	key := model.NewLockKey("vip", model.KindTools, "teacher", time.Now())
	if _, err := locks.Load(context.Background(), key); !errors.Is(err, repository.ErrLockNotFound) {
		t.Errorf("expected no lock for premium user, got err=%v", err)
	}
}

func TestForceRefreshRelocksFreeUser(t *testing.T) {
	prod := &fakeProducer{}
	svc, _ := newTestService(t, prod)

	first := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})
	refreshed := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher", ForceRefresh: true})

	if refreshed.Source != SourceLiveFetch {
		t.Fatalf("refresh Source = %s, want %s", refreshed.Source, SourceLiveFetch)
	}
	if sameIDs(first.Items, refreshed.Items) {
		t.Error("force refresh returned the original items")
	}

	// The refreshed set becomes the new daily snapshot.
	locked := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})
	if locked.Source != SourceDailyLock {
		t.Fatalf("post-refresh Source = %s, want %s", locked.Source, SourceDailyLock)
	}
	if !sameIDs(refreshed.Items, locked.Items) {
		t.Errorf("lock holds %v, want refreshed set %v", itemIDs(locked.Items), itemIDs(refreshed.Items))
	}
}

func TestCacheHitLocksFreeUser(t *testing.T) {
	prod := &fakeProducer{}
	svc, _ := newTestService(t, prod)

	// u1's live fetch leaves a 12-item surplus for the profession.
	svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})

	// u2 is served from the surplus, and that page becomes u2's daily set.
	fromCache := svc.Fetch(context.Background(), FetchRequest{UserID: "u2", Kind: model.KindTools, Profession: "teacher"})
	if fromCache.Source != SourceCache {
		t.Fatalf("u2 first Source = %s, want %s", fromCache.Source, SourceCache)
	}

	locked := svc.Fetch(context.Background(), FetchRequest{UserID: "u2", Kind: model.KindTools, Profession: "teacher"})
	if locked.Source != SourceDailyLock {
		t.Fatalf("u2 second Source = %s, want %s", locked.Source, SourceDailyLock)
	}
	if !sameIDs(fromCache.Items, locked.Items) {
		t.Error("u2's lock does not match the page u2 saw")
	}
	if prod.calls != 1 {
		t.Errorf("producer called %d times, want 1", prod.calls)
	}
}

func TestSeedsIncrementAcrossRestocks(t *testing.T) {
	prod := &fakeProducer{}
	svc, _ := newTestService(t, prod, "vip")
	req := FetchRequest{UserID: "vip", Kind: model.KindTools, Profession: "teacher", ForceRefresh: true}

	for i := 0; i < 3; i++ {
		svc.Fetch(context.Background(), req)
	}

	want := []int{0, 1, 2}
	if len(prod.seeds) != len(want) {
		t.Fatalf("producer called %d times, want %d", len(prod.seeds), len(want))
	}
	for i := range want {
		if prod.seeds[i] != want[i] {
			t.Errorf("call %d seed = %d, want %d", i, prod.seeds[i], want[i])
		}
	}
}

func TestProducerFailureServesFallback(t *testing.T) {
	prod := &fakeProducer{err: &producer.Error{Op: "search", Err: producer.ErrEmptyResults}}
	svc, locks := newTestService(t, prod)

	res := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})
	if res.Source != SourceFallback {
		t.Errorf("Source = %s, want %s", res.Source, SourceFallback)
	}
	if len(res.Items) == 0 {
		t.Error("fallback returned no items")
	}

	// A degraded response must not lock the user's day.
	key := model.NewLockKey("u1", model.KindTools, "teacher", time.Now())
	if _, err := locks.Load(context.Background(), key); !errors.Is(err, repository.ErrLockNotFound) {
		t.Errorf("expected no lock after fallback, got err=%v", err)
	}

	// The next request tries the pipeline again.
	svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})
	if prod.calls != 2 {
		t.Errorf("producer called %d times, want 2", prod.calls)
	}
}

func TestLockStoreReadFailureDegradesToFetch(t *testing.T) {
	prod := &fakeProducer{}
	locks := &failingLockRepo{loadErr: errors.New("disk on fire")}
	premium := NewPremiumService(&fakePremiumRepo{})
	contentCache := cache.NewContentCache(cache.Options{DisplayCount: 6, FetchCount: 18, TTL: 30 * time.Minute})

	svc := NewInsightService(contentCache, locks, nil, premium, prod, nil)
	res := svc.Fetch(context.Background(), FetchRequest{UserID: "u1", Kind: model.KindTools, Profession: "teacher"})

	if res.Source != SourceLiveFetch {
		t.Errorf("Source = %s, want %s", res.Source, SourceLiveFetch)
	}
	if len(res.Items) != 6 {
		t.Errorf("got %d items, want 6", len(res.Items))
	}
}

// failingLockRepo simulates lock store I/O failure.
type failingLockRepo struct {
	loadErr  error
	storeErr error
}

func (f *failingLockRepo) Load(ctx context.Context, key model.LockKey) ([]model.ContentItem, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return nil, repository.ErrLockNotFound
}

func (f *failingLockRepo) Store(ctx context.Context, key model.LockKey, items []model.ContentItem) error {
	return f.storeErr
}

func (f *failingLockRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *failingLockRepo) Stats(ctx context.Context) (map[string]interface{}, error) {
	return nil, nil
}

func (f *failingLockRepo) Close() error { return nil }
