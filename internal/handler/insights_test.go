package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"focusai-rest-api/internal/cache"
	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/repository"
	"focusai-rest-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type stubProducer struct {
	calls int
}

func (s *stubProducer) FetchBatch(ctx context.Context, kind model.Kind, profession string, seed, count int) ([]model.ContentItem, error) {
	s.calls++
	items := make([]model.ContentItem, count)
	for i := range items {
		items[i] = model.ContentItem{
			ID:    fmt.Sprintf("%s-%d-%d", kind, s.calls, i),
			Title: "card",
			URL:   fmt.Sprintf("https://example.com/%d/%d", s.calls, i),
		}
	}
	return items, nil
}

type stubInsightRepo struct {
	items []model.ContentItem
}

func (s *stubInsightRepo) SaveInsights(ctx context.Context, items []model.ContentItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubInsightRepo) GetInsights(ctx context.Context, limit, offset int) ([]model.ContentItem, error) {
	if offset >= len(s.items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[offset:end], nil
}

func (s *stubInsightRepo) GetInsightByID(ctx context.Context, id string) (*model.ContentItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, repository.ErrInsightNotFound
}

func (s *stubInsightRepo) CountInsights(ctx context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

func (s *stubInsightRepo) GetInsightsByDate(ctx context.Context, date string, limit int) ([]model.ContentItem, error) {
	var out []model.ContentItem
	for _, item := range s.items {
		if item.Timestamp == date && len(out) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubInsightRepo) Close() error { return nil }

func newTestRouter(t *testing.T, insightRepo repository.InsightRepository) *chi.Mux {
	t.Helper()

	contentCache := cache.NewContentCache(cache.Options{DisplayCount: 6, FetchCount: 18, TTL: 30 * time.Minute})
	locks := repository.NewMemoryDailyLockRepository()
	premium := service.NewPremiumService(nil)
	svc := service.NewInsightService(contentCache, locks, insightRepo, premium, &stubProducer{}, nil)
	if svc == nil {
		t.Fatal("NewInsightService returned nil")
	}

	h := NewInsightHandler(svc, insightRepo)
	r := chi.NewRouter()
	r.Get("/api/v1/professions", h.Professions)
	r.Route("/api/v1/insights", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/mock", h.Mock)
		r.Get("/tools", h.GetTools)
		r.Get("/cases", h.GetCases)
		r.Get("/generate", h.GenerateNews)
		r.Get("/{insight_id}", h.GetDetail)
	})
	return r
}

func TestGetToolsEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/tools?user_id=u1&profession=student", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result service.FetchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.Source != service.SourceLiveFetch {
		t.Errorf("source = %s, want %s", result.Source, service.SourceLiveFetch)
	}
	if len(result.Items) != 6 {
		t.Errorf("got %d items, want 6", len(result.Items))
	}
	if result.Profession != "student" {
		t.Errorf("profession = %s, want student", result.Profession)
	}
}

func TestGetToolsDefaultsAnonymous(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	// Two bare requests behave like the same anonymous free user: the
	// second is served from the daily lock.
	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/insights/tools", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/insights/tools", nil))

	var result service.FetchResult
	if err := json.Unmarshal(second.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.Source != service.SourceDailyLock {
		t.Errorf("second anonymous request source = %s, want %s", result.Source, service.SourceDailyLock)
	}
}

func TestGenerateNewsEndpointPersists(t *testing.T) {
	repo := &stubInsightRepo{}
	r := newTestRouter(t, repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/generate?user_id=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(repo.items) == 0 {
		t.Error("generated news was not persisted")
	}
}

func TestListPaginationValidation(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	tests := []struct {
		query    string
		wantCode int
	}{
		{query: "", wantCode: http.StatusOK},
		{query: "?page=2&page_size=10", wantCode: http.StatusOK},
		{query: "?page=0", wantCode: http.StatusBadRequest},
		{query: "?page=-1", wantCode: http.StatusBadRequest},
		{query: "?page=abc", wantCode: http.StatusBadRequest},
		{query: "?page_size=0", wantCode: http.StatusBadRequest},
		{query: "?page_size=51", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/"+tt.query, nil))
		if rec.Code != tt.wantCode {
			t.Errorf("query %q: status = %d, want %d", tt.query, rec.Code, tt.wantCode)
		}
	}
}

func TestGetDetailNotFound(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/no-such-id", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListUnavailableWithoutStore(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestMockEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/mock?profession=student", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cards []model.ContentItem
	if err := json.Unmarshal(rec.Body.Bytes(), &cards); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(cards) == 0 {
		t.Error("mock endpoint returned no cards")
	}
}

func TestMockEndpointKinds(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/mock?kind=tools", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("kind=tools status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/insights/mock?kind=videos", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("kind=videos status = %d, want 400", rec.Code)
	}
}

func TestProfessionsEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubInsightRepo{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/professions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    []struct {
			Key     string `json:"key"`
			Display string `json:"display"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !envelope.Success {
		t.Error("success = false")
	}
	if len(envelope.Data) != len(model.Professions) {
		t.Errorf("got %d professions, want %d", len(envelope.Data), len(model.Professions))
	}
}
