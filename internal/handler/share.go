package handler

import (
	"net/http"
	"time"

	"focusai-rest-api/internal/model"
	"focusai-rest-api/internal/repository"
	"focusai-rest-api/pkg/apierror"
	"focusai-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// shareLimit caps how many cards a daily share page shows.
const shareLimit = 10

// ShareHandler serves public read-only views of stored insights.
type ShareHandler struct {
	insightRepo repository.InsightRepository
}

// NewShareHandler creates a new share handler.
func NewShareHandler(insightRepo repository.InsightRepository) *ShareHandler {
	return &ShareHandler{insightRepo: insightRepo}
}

// sharedCard strips fields not meant for the public share page.
type sharedCard struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags,omitempty"`
	Summary string   `json:"summary"`
	URL     string   `json:"url,omitempty"`
	Date    string   `json:"date"`
}

// Daily handles GET /api/v1/share/daily/{date}
func (h *ShareHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		response.Error(w, apierror.BadRequest("date must be formatted as YYYY-MM-DD"))
		return
	}

	items, err := h.insightRepo.GetInsightsByDate(r.Context(), date, shareLimit)
	if err != nil {
		response.Error(w, err)
		return
	}

	cards := make([]sharedCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, sharedCard{
			ID:      item.ID,
			Title:   item.Title,
			Tags:    item.Tags,
			Summary: item.Summary,
			URL:     item.URL,
			Date:    item.Timestamp,
		})
	}

	response.OK(w, map[string]interface{}{
		"date":  date,
		"count": len(cards),
		"cards": cards,
	})
}
