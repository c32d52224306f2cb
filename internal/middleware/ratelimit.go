package middleware

import (
	"net/http"
	"sync"
	"time"

	"focusai-rest-api/pkg/apierror"
	"focusai-rest-api/pkg/response"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds per-user rate limit settings.
type RateLimiterConfig struct {
	PerMinute       int           // allowed requests per minute per user
	Burst           int           // burst size
	CleanupInterval time.Duration // how often idle limiters are evicted
}

// userLimiter pairs a token bucket with its last access time.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces a per-user token bucket. The generate endpoint
// triggers real search and LLM spend, so it gets a tighter budget than
// the rest of the API.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its eviction loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.PerMinute <= 0 {
		config.PerMinute = 10
	}
	if config.Burst <= 0 {
		config.Burst = config.PerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether userID may proceed.
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.config.PerMinute)/60.0), rl.config.Burst),
		}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = time.Now()
	return ul.limiter.Allow()
}

// Middleware rejects over-limit requests with 429. The user is identified
// by the user_id query parameter, falling back to the remote address so
// anonymous traffic is still bounded.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = r.RemoteAddr
		}

		if !rl.Allow(userID) {
			response.Error(w, apierror.TooManyRequests("请求过于频繁，请稍后再试"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupLoop evicts limiters idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * rl.config.CleanupInterval)
			rl.mu.Lock()
			for id, ul := range rl.limiters {
				if ul.lastAccess.Before(cutoff) {
					delete(rl.limiters, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop terminates the eviction loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}
