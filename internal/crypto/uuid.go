package crypto

import (
	"github.com/google/uuid"
)

// NewID generates a time-ordered UUID v7 string for a stored record.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
