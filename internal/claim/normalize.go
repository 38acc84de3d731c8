package claim

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes raw claim text for cache keying and deduplication:
// lowercased, whitespace collapsed, surrounding punctuation and quotes stripped.
// Deterministic and pure; two claims equivalent up to formatting normalize
// identically, which is what makes cache lookups correct.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, `.,!?;:"'()[]{}«»“”‘’`)
	return strings.TrimSpace(text)
}

// Key returns the content-addressed cache key for a claim:
// a hex-encoded SHA-256 of the normalized text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return "crisiswatch:v1:" + hex.EncodeToString(sum[:])
}
