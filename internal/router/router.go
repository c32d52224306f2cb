package router

import (
	"net/http"

	"focusai-rest-api/internal/handler"
	"focusai-rest-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	InsightHandler *handler.InsightHandler
	ShareHandler   *handler.ShareHandler
	UserHandler    *handler.UserHandler
	AdminHandler   *handler.AdminHandler
	RateLimiter    *middleware.RateLimiter
	MetricsHandler http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC monitoring endpoints
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Content fetch and insight endpoints
		if cfg.InsightHandler != nil {
			r.Get("/professions", cfg.InsightHandler.Professions)

			r.Route("/insights", func(r chi.Router) {
				r.Get("/", cfg.InsightHandler.List)
				r.Get("/mock", cfg.InsightHandler.Mock)
				r.Get("/tools", cfg.InsightHandler.GetTools)
				r.Get("/cases", cfg.InsightHandler.GetCases)

				// News generation calls search and LLM upstreams, so it
				// carries a per-user rate limit.
				if cfg.RateLimiter != nil {
					r.With(cfg.RateLimiter.Middleware).Get("/generate", cfg.InsightHandler.GenerateNews)
				} else {
					r.Get("/generate", cfg.InsightHandler.GenerateNews)
				}

				r.Get("/{insight_id}", cfg.InsightHandler.GetDetail)
			})
		}

		// Account state
		if cfg.UserHandler != nil {
			r.Get("/users/premium", cfg.UserHandler.PremiumStatus)
		}

		// Public daily share page
		if cfg.ShareHandler != nil {
			r.Get("/share/daily/{date}", cfg.ShareHandler.Daily)
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.Stats)
			})
		}
	})

	return r
}
