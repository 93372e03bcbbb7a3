// Package hash fingerprints plans so the plan an operator reviewed can be
// matched against the plan that is applied.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DigestLen is the length of a hex SHA-256 digest.
const DigestLen = sha256.Size * 2

// Hasher provides an abstraction for content hashing.
type Hasher interface {
	// HashBytes returns the hex digest of data.
	HashBytes(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashBytes computes the SHA-256 digest of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Matches compares a full digest with an operator-supplied one. The expected
// value may be an abbreviated prefix of at least 8 hex characters.
func Matches(digest, expected string) bool {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if len(expected) < 8 || len(expected) > len(digest) {
		return false
	}
	return strings.HasPrefix(digest, expected)
}
