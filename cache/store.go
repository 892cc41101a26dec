// Package cache holds the byte stores behind the transport's response cache.
//
// Stores must be safe for concurrent use and return exactly the bytes that
// were stored. Expiry is the only invalidation; there is no protocol for
// evicting an entry after a write to the backend.
package cache

import (
	"context"
	"time"
)

// Store is a byte store with TTLs.
type Store interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A ttl <= 0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
