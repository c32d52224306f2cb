package model

import (
	"strings"
	"time"
)

// LockKey identifies one free-user daily snapshot. Profession is part of the
// key for every kind so a user who switches profession mid-day is not served
// cards written for the old one.
type LockKey struct {
	UserID     string
	Kind       Kind
	Date       string // ISO calendar day, e.g. "2026-08-31"
	Profession string
}

// DateFormat is the calendar-day layout used in lock keys.
const DateFormat = "2006-01-02"

// NewLockKey builds the key for userID's snapshot of kind on day now.
func NewLockKey(userID string, kind Kind, profession string, now time.Time) LockKey {
	return LockKey{
		UserID:     userID,
		Kind:       kind,
		Date:       now.Format(DateFormat),
		Profession: profession,
	}
}

// String renders the composite storage key.
func (k LockKey) String() string {
	return strings.Join([]string{k.UserID, string(k.Kind), k.Date, k.Profession}, ":")
}
