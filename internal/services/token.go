package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// tokenLifetime is how long verification and reset tokens stay valid.
const tokenLifetime = time.Hour

// newTokenString returns 32 random bytes as a 64-character hex string.
func newTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return hex.EncodeToString(buf), nil
}
