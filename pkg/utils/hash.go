package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString returns the hex SHA-1 of s. It keys cached snapshots by source
// URL, so the output must stay stable across releases.
func HashString(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
