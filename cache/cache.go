// Package cache holds the byte-level stores behind the post cache: an
// in-process TTL map and a Redis client for deployments running more than one
// instance.
package cache

import (
	"context"
	"time"
)

// Backend stores opaque values under string keys with a time to live.
type Backend interface {
	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val for ttl. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Purge drops every key owned by this backend.
	Purge(ctx context.Context) error
	// Close releases background resources.
	Close() error
}
