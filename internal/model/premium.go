package model

import "time"

// PremiumStatus mirrors one row of the premium_users table.
type PremiumStatus struct {
	UserID    string     `json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Active reports whether the entitlement is currently in force.
func (p *PremiumStatus) Active(now time.Time) bool {
	return p != nil && p.ExpiresAt != nil && p.ExpiresAt.After(now)
}
