// Package cache stores rendered comparison artifacts so repeated runs
// over the same documents skip Graphviz layout. Keys are derived from
// the input document hashes plus the render options fingerprint.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the storage backend for rendered artifacts.
type Cache interface {
	// Get retrieves a value; the bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DiagramKey builds the cache key for a rendered diagram: the sorted
// document hashes plus whatever options shape the output.
func DiagramKey(docHashes []string, format string, opts any) string {
	return hashKey("diagram:"+format, docHashes, opts)
}

// hashKey generates a cache key by hashing the components.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
