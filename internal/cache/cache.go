package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte store with per-entry TTL. Used directly for HTTP response
// caching and as the persistence backing of the result cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// HTTPKey generates a cache key for an outbound request URL
func HTTPKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "crisiswatch:http:v1:" + hex.EncodeToString(hash[:])
}
