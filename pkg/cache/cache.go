// Package cache provides the caching layer for layouts and rendered
// artifacts.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [MemoryCache]: process-local map, the default for the HTTP server
//   - [FileCache]: one file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: document store with a TTL index on the expiry field
//
// All backends implement [Cache] and are safe for concurrent use. Backend
// failures that are worth retrying (timeouts, dropped connections) are
// wrapped with [Retryable]; [RetryWithBackoff] retries them.
//
// # Keys
//
// A [Keyer] derives keys from content hashes so identical inputs share
// entries: a layout key hashes the tag set together with radius, seed,
// fallback and parameters; an artifact key hashes the layout together with
// the render options. [ScopedKeyer] adds a prefix for isolating tenants.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero means
// the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
