package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a cache key as prefix:hash(parts...). Snapshot and
// artifact keys both funnel through here so the key space stays uniform.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash computes the full 64-character hex SHA-256 of data. The content
// hashes that key snapshot caching use the full digest so distinct filtered
// graphs can never collide.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
