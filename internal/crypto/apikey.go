// Package crypto generates the opaque credentials handed to agents and
// the identifiers assigned to stored records.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// apiKeyBytes is the entropy of a generated agent API key. 32 bytes keeps
// brute force out of reach even for offline comparison.
const apiKeyBytes = 32

// NewAPIKey generates a fresh agent API key. The "cfy_" prefix makes keys
// recognizable in logs and support tickets without revealing anything.
func NewAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return "cfy_" + hex.EncodeToString(buf), nil
}
