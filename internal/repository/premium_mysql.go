package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MySQLPremiumRepository implements PremiumRepository using MySQL.
// It only reads premium_users; grants and revocations happen in the
// separate admin/invite services that own the table.
type MySQLPremiumRepository struct {
	db *sql.DB
}

// NewMySQLPremiumRepository creates a new MySQL premium repository.
func NewMySQLPremiumRepository(db *sql.DB) *MySQLPremiumRepository {
	return &MySQLPremiumRepository{db: db}
}

// GetPremiumExpiry returns the entitlement expiry for the user, or nil when
// the user has never held premium.
func (r *MySQLPremiumRepository) GetPremiumExpiry(ctx context.Context, userID string) (*time.Time, error) {
	query := `SELECT premium_expires FROM premium_users WHERE user_id = ? LIMIT 1`

	var expires sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&expires)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get premium status: %w", err)
	}

	if !expires.Valid {
		return nil, nil
	}
	return &expires.Time, nil
}

// Ensure MySQLPremiumRepository implements PremiumRepository
var _ PremiumRepository = (*MySQLPremiumRepository)(nil)
