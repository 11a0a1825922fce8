// Package contenthash computes the canonical identity of extracted document text.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the hex SHA-256 digest of the UTF-8 bytes of text.
func Compute(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
