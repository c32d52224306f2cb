package handler

import (
	"log"
	"net/http"
	"runtime"
	"time"

	"focusai-rest-api/internal/cache"
	"focusai-rest-api/internal/producer"
	"focusai-rest-api/internal/repository"
	"focusai-rest-api/pkg/response"
)

// AdminHandler exposes operational statistics.
type AdminHandler struct {
	cache    *cache.ContentCache
	rotator  *producer.KeyRotator
	lockRepo repository.DailyLockRepository
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(contentCache *cache.ContentCache, rotator *producer.KeyRotator, lockRepo repository.DailyLockRepository) *AdminHandler {
	return &AdminHandler{
		cache:    contentCache,
		rotator:  rotator,
		lockRepo: lockRepo,
	}
}

// StatsResponse aggregates runtime and store statistics.
type StatsResponse struct {
	UptimeSeconds int64                  `json:"uptime_seconds"`
	MemoryMB      float64                `json:"memory_mb"`
	Goroutines    int                    `json:"goroutines"`
	Cache         cache.Stats            `json:"cache"`
	SearchKeys    int                    `json:"search_keys"`
	LockStore     map[string]interface{} `json:"lock_store"`
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := StatsResponse{
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		MemoryMB:      float64(int(float64(memStats.Alloc)/1024/1024*100)) / 100,
		Goroutines:    runtime.NumGoroutine(),
	}

	if h.cache != nil {
		resp.Cache = h.cache.Stats()
	}
	if h.rotator != nil {
		resp.SearchKeys = h.rotator.Count()
	}
	if h.lockRepo != nil {
		stats, err := h.lockRepo.Stats(r.Context())
		if err != nil {
			log.Printf("Warning: failed to read lock store stats: %v", err)
		} else {
			resp.LockStore = stats
		}
	}

	response.OK(w, resp)
}
