// Package passcheck verifies a password against a configured SHA-256 hex digest.
package passcheck

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Hash returns the lowercase hex SHA-256 of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password hashes to want. An empty want never matches.
func Verify(password, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return false
	}
	got := Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// ValidHash reports whether h looks like a hex SHA-256 digest.
func ValidHash(h string) bool {
	h = strings.TrimSpace(h)
	if len(h) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
