package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashLen is the number of hex characters kept from the SHA-256 digest.
// 64 bits is plenty to detect a resubmitted identical body.
const hashLen = 16

// HashContent returns the deterministic digest used to detect no-op edits:
// resubmitting identical content never grows a version chain.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:hashLen]
}
