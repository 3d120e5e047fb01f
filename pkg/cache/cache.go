// Package cache provides the pluggable byte cache used by registry clients
// and the pipeline. Backends share one interface so callers can swap the
// default in-process store for a file-based or Redis-backed one without
// touching resolution code. Entries are immutable once written; concurrent
// inserts of the same key resolve to last-writer-wins over identical bytes.
package cache

import (
	"context"
	"time"
)

// TTLTree bounds how long a fully resolved and scored dependency tree is
// reused before the registry is consulted again.
const TTLTree = 24 * time.Hour

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
