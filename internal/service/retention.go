package service

import (
	"context"
	"log"
	"sync"
	"time"

	"focusai-rest-api/internal/repository"
)

// RetentionConfig holds configuration for the lock retention scheduler.
type RetentionConfig struct {
	// RetentionDays is how many days lock records are kept before
	// deletion. The share page replays old locks, so this should stay
	// generous; 0 disables cleanup entirely.
	RetentionDays int

	// CleanupInterval is how often the cleanup runs.
	CleanupInterval time.Duration
}

// RetentionScheduler periodically deletes daily lock records past the
// retention window. Day rollover already makes old records unreachable to
// the serving path; this only bounds storage growth.
type RetentionScheduler struct {
	locks    repository.DailyLockRepository
	config   RetentionConfig
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// NewRetentionScheduler creates a scheduler over the given lock store.
func NewRetentionScheduler(locks repository.DailyLockRepository, config RetentionConfig) *RetentionScheduler {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 24 * time.Hour
	}

	return &RetentionScheduler{
		locks:  locks,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the retention scheduler. No-op when retention is disabled.
func (s *RetentionScheduler) Start() {
	if s.config.RetentionDays <= 0 {
		log.Printf("[RetentionScheduler] Disabled (retention days = %d)", s.config.RetentionDays)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.config.CleanupInterval)
	s.mu.Unlock()

	log.Printf("[RetentionScheduler] Started - Interval: %v, Retention: %d days",
		s.config.CleanupInterval, s.config.RetentionDays)

	go s.run()
}

// run is the main cleanup loop.
func (s *RetentionScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[RetentionScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs the actual cleanup.
func (s *RetentionScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.locks.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[RetentionScheduler] Error during cleanup: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[RetentionScheduler] Cleaned up %d lock records older than %v", deleted, cutoff.Format("2006-01-02"))
	}
}

// Stop stops the retention scheduler.
func (s *RetentionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.running = false
	})
}
