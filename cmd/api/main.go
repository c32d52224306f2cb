package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusai-rest-api/internal/cache"
	"focusai-rest-api/internal/config"
	"focusai-rest-api/internal/handler"
	"focusai-rest-api/internal/metrics"
	"focusai-rest-api/internal/middleware"
	"focusai-rest-api/internal/producer"
	"focusai-rest-api/internal/repository"
	"focusai-rest-api/internal/router"
	"focusai-rest-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting FocusAI API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize daily lock repository based on config
	var lockRepo repository.DailyLockRepository
	switch cfg.LockDB.Type {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisRepo, err := repository.NewRedisDailyLockRepository(redisClient)
		if err != nil {
			log.Printf("Warning: Redis lock store failed, falling back to memory: %v", err)
			lockRepo = repository.NewMemoryDailyLockRepository()
		} else {
			lockRepo = redisRepo
			log.Println("Redis daily lock repository initialized")
		}
	case "memory":
		lockRepo = repository.NewMemoryDailyLockRepository()
		log.Println("In-memory daily lock repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteDailyLockRepository(cfg.LockDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite lock store: %v", err)
		}
		lockRepo = sqliteRepo
		log.Println("SQLite daily lock repository initialized")
	}
	defer lockRepo.Close()

	// Initialize insight repository (shares the SQLite file with the lock store)
	var insightRepo repository.InsightRepository
	sqliteInsights, err := repository.NewSQLiteInsightRepository(cfg.LockDB.Path)
	if err != nil {
		log.Printf("Warning: insight store unavailable, listing disabled: %v", err)
	} else {
		insightRepo = sqliteInsights
		defer sqliteInsights.Close()
		log.Println("SQLite insight repository initialized")
	}

	// Initialize MySQL connection for premium entitlements (optional)
	var premiumRepo repository.PremiumRepository
	mysqlDB, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		log.Printf("Warning: MySQL connection failed: %v", err)
	} else {
		mysqlDB.SetMaxOpenConns(10)
		mysqlDB.SetMaxIdleConns(5)
		mysqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := mysqlDB.Ping(); err != nil {
			log.Printf("Warning: MySQL ping failed, all users treated as free tier: %v", err)
			mysqlDB.Close()
			mysqlDB = nil
		} else {
			premiumRepo = repository.NewMySQLPremiumRepository(mysqlDB)
			log.Println("MySQL premium repository initialized")
		}
	}
	if mysqlDB != nil {
		defer mysqlDB.Close()
	}

	// Initialize content cache and upstream producer
	contentCache := cache.NewContentCache(cache.Options{
		DisplayCount: cfg.Content.DisplayCount,
		FetchCount:   cfg.Content.FetchCount,
		TTL:          cfg.Content.TTL,
	})

	rotator := producer.NewKeyRotator(cfg.Search.TavilyKeys())
	if !rotator.HasKeys() {
		log.Println("Warning: no Tavily API keys configured, serving fallback content only")
	} else {
		log.Printf("Key rotator initialized with %d keys", rotator.Count())
	}
	batchProducer := producer.NewTavilyProducer(cfg.Search, rotator)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Initialize services
	premiumService := service.NewPremiumService(premiumRepo)
	insightService := service.NewInsightService(contentCache, lockRepo, insightRepo, premiumService, batchProducer, collector)
	if insightService == nil {
		log.Fatal("Failed to initialize insight service")
	}

	retention := service.NewRetentionScheduler(lockRepo, service.RetentionConfig{
		RetentionDays:   cfg.LockDB.RetentionDays,
		CleanupInterval: cfg.LockDB.CleanupInterval,
	})
	retention.Start()
	defer retention.Stop()

	// Rate limiter for the generate endpoint
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimit.GeneratePerMinute,
		Burst:     cfg.RateLimit.GenerateBurst,
	})
	defer rateLimiter.Stop()

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	insightHandler := handler.NewInsightHandler(insightService, insightRepo)
	userHandler := handler.NewUserHandler(premiumService)
	adminHandler := handler.NewAdminHandler(contentCache, rotator, lockRepo)

	var shareHandler *handler.ShareHandler
	if insightRepo != nil {
		shareHandler = handler.NewShareHandler(insightRepo)
	}

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		InsightHandler: insightHandler,
		ShareHandler:   shareHandler,
		UserHandler:    userHandler,
		AdminHandler:   adminHandler,
		RateLimiter:    rateLimiter,
		MetricsHandler: metrics.Handler(registry),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
