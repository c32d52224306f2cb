package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"focusai-rest-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteDailyLockRepository implements DailyLockRepository using SQLite.
// One row per (user, kind, day, profession); rows are retained after their
// day passes so the share page can replay them.
type SQLiteDailyLockRepository struct {
	db *sql.DB
}

// NewSQLiteDailyLockRepository opens (or creates) the lock database.
// dbPath is the path to the SQLite database file (e.g., "./data/focusai.db")
func NewSQLiteDailyLockRepository(dbPath string) (*SQLiteDailyLockRepository, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	query := `
	CREATE TABLE IF NOT EXISTS daily_locks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lock_key TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		lock_date TEXT NOT NULL,
		profession TEXT NOT NULL DEFAULT '',
		items_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lock_date ON daily_locks(lock_date);
	CREATE INDEX IF NOT EXISTS idx_lock_created ON daily_locks(created_at);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create daily_locks table: %w", err)
	}

	log.Printf("[SQLiteDailyLockRepository] Initialized with database: %s", dbPath)
	return &SQLiteDailyLockRepository{db: db}, nil
}

// openSQLite opens a SQLite file with WAL mode and the pool settings every
// repository in this package shares.
func openSQLite(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Load returns the locked items for the key, or ErrLockNotFound.
func (r *SQLiteDailyLockRepository) Load(ctx context.Context, key model.LockKey) ([]model.ContentItem, error) {
	query := `SELECT items_json FROM daily_locks WHERE lock_key = ?`

	var itemsJSON string
	err := r.db.QueryRowContext(ctx, query, key.String()).Scan(&itemsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to load daily lock: %w", err)
	}

	var items []model.ContentItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("corrupt daily lock record %s: %w", key.String(), err)
	}
	return items, nil
}

// Store upserts the locked items for the key (last write wins).
func (r *SQLiteDailyLockRepository) Store(ctx context.Context, key model.LockKey, items []model.ContentItem) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize daily lock items: %w", err)
	}

	query := `
		INSERT INTO daily_locks (lock_key, user_id, kind, lock_date, profession, items_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(lock_key) DO UPDATE SET
			items_json = excluded.items_json,
			created_at = datetime('now')`

	_, err = r.db.ExecContext(ctx, query,
		key.String(), key.UserID, string(key.Kind), key.Date, key.Profession, string(itemsJSON))
	if err != nil {
		return fmt.Errorf("failed to store daily lock: %w", err)
	}
	return nil
}

// DeleteOlderThan removes lock records created before cutoff.
func (r *SQLiteDailyLockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM daily_locks WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old daily locks: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLiteDailyLockRepository] Cleaned up %d lock records older than %v", deleted, cutoff)
	}
	return deleted, nil
}

// Stats returns statistics about the lock store.
func (r *SQLiteDailyLockRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "sqlite"}

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_locks").Scan(&count); err != nil {
		return nil, err
	}
	stats["lock_records"] = count

	var lastWrite sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM daily_locks").Scan(&lastWrite); err == nil && lastWrite.Valid {
		stats["last_write"] = lastWrite.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteDailyLockRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteDailyLockRepository implements DailyLockRepository
var _ DailyLockRepository = (*SQLiteDailyLockRepository)(nil)
