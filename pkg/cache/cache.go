// Package cache stores rendered artifacts so repeated renders of the same
// scene and view are served without drawing again.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several server replicas
//   - [MongoCache]: a MongoDB collection with a TTL index, for deployments
//     that already run MongoDB
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// A [Keyer] turns a scene hash and the options that affect output into a
// key. Keys for different formats, zoom levels, or label settings never
// collide; [ScopedKeyer] adds a prefix so one backend can hold several
// namespaces.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data; ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Entry lifetimes.
const (
	// TTLScene keeps uploaded scene documents for server sessions.
	TTLScene = 24 * time.Hour
	// TTLArtifact keeps rendered SVG, PNG and label JSON.
	TTLArtifact = 7 * 24 * time.Hour
)
