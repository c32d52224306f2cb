package producer

import "sync/atomic"

// KeyRotator round-robins search API credentials so free-tier quotas
// stack across accounts. The cursor is a monotonic counter taken mod the
// key count: concurrent callers spread load without strict uniqueness.
type KeyRotator struct {
	keys   []string
	cursor atomic.Int64
}

// NewKeyRotator creates a rotator over the given ordered credential list.
// An empty list is legal; callers must check HasKeys before fetching.
func NewKeyRotator(keys []string) *KeyRotator {
	return &KeyRotator{keys: keys}
}

// Next returns the next credential and advances the cursor.
// Returns "" when no credentials are configured.
func (r *KeyRotator) Next() string {
	if len(r.keys) == 0 {
		return ""
	}
	n := r.cursor.Add(1) - 1
	return r.keys[int(n%int64(len(r.keys)))]
}

// HasKeys reports whether any credential is configured.
func (r *KeyRotator) HasKeys() bool {
	return len(r.keys) > 0
}

// Count returns the number of configured credentials.
func (r *KeyRotator) Count() int {
	return len(r.keys)
}
