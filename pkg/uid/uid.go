package uid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// NewShort generates a compact 8-character identifier for card IDs.
func NewShort() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
