package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewVerificationCode returns 3 random bytes hex encoded: 6 characters.
func NewVerificationCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
