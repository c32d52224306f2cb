package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"focusai-rest-api/internal/model"
)

// SQLiteInsightRepository stores generated insight cards. It shares the
// database file with the lock store but owns its own connection; WAL mode
// plus the busy timeout keeps the two writers out of each other's way.
type SQLiteInsightRepository struct {
	db *sql.DB
}

// NewSQLiteInsightRepository opens (or creates) the insight table.
func NewSQLiteInsightRepository(dbPath string) (*SQLiteInsightRepository, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}

	query := `
	CREATE TABLE IF NOT EXISTS insights (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		card_json TEXT NOT NULL,
		card_date TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_insight_date ON insights(card_date);
	CREATE INDEX IF NOT EXISTS idx_insight_created ON insights(created_at);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create insights table: %w", err)
	}

	log.Printf("[SQLiteInsightRepository] Initialized with database: %s", dbPath)
	return &SQLiteInsightRepository{db: db}, nil
}

// SaveInsights appends generated cards. Duplicate IDs are ignored so a
// retried generation does not double-store.
func (r *SQLiteInsightRepository) SaveInsights(ctx context.Context, items []model.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO insights (id, title, card_json, card_date, created_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		cardJSON, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to serialize insight %s: %w", item.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, item.ID, item.Title, string(cardJSON), item.Timestamp); err != nil {
			return fmt.Errorf("failed to save insight %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetInsights returns cards newest first.
func (r *SQLiteInsightRepository) GetInsights(ctx context.Context, limit, offset int) ([]model.ContentItem, error) {
	query := `SELECT card_json FROM insights ORDER BY created_at DESC, id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// GetInsightByID returns one card, or ErrInsightNotFound.
func (r *SQLiteInsightRepository) GetInsightByID(ctx context.Context, id string) (*model.ContentItem, error) {
	var cardJSON string
	err := r.db.QueryRowContext(ctx, `SELECT card_json FROM insights WHERE id = ?`, id).Scan(&cardJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsightNotFound
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	var item model.ContentItem
	if err := json.Unmarshal([]byte(cardJSON), &item); err != nil {
		return nil, fmt.Errorf("corrupt insight record %s: %w", id, err)
	}
	return &item, nil
}

// CountInsights returns the total number of stored cards.
func (r *SQLiteInsightRepository) CountInsights(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM insights`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count insights: %w", err)
	}
	return count, nil
}

// GetInsightsByDate returns up to limit cards stamped with the ISO day.
func (r *SQLiteInsightRepository) GetInsightsByDate(ctx context.Context, date string, limit int) ([]model.ContentItem, error) {
	query := `SELECT card_json FROM insights WHERE card_date = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, date, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights by date: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]model.ContentItem, error) {
	items := []model.ContentItem{}
	for rows.Next() {
		var cardJSON string
		if err := rows.Scan(&cardJSON); err != nil {
			return nil, err
		}
		var item model.ContentItem
		if err := json.Unmarshal([]byte(cardJSON), &item); err != nil {
			// Skip corrupt rows rather than failing the whole page.
			log.Printf("[SQLiteInsightRepository] Warning: skipping corrupt row: %v", err)
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close closes the database connection.
func (r *SQLiteInsightRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteInsightRepository implements InsightRepository
var _ InsightRepository = (*SQLiteInsightRepository)(nil)
