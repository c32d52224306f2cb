package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured == "" {
		t.Error("no request ID in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("header %q does not match context %q", got, captured)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("request ID = %q, want caller-supplied", got)
	}
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("request %d within burst denied", i)
		}
	}
	if rl.Allow("u1") {
		t.Error("request beyond burst allowed")
	}
}

func TestRateLimiterIsPerUser(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 1})
	defer rl.Stop()

	if !rl.Allow("u1") {
		t.Fatal("u1 first request denied")
	}
	if rl.Allow("u1") {
		t.Error("u1 second request allowed")
	}
	if !rl.Allow("u2") {
		t.Error("u2 blocked by u1's bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := rl.Middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/?user_id=u1", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}
