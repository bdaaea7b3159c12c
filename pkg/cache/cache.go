// Package cache stores rendered artifacts and fetched network documents.
//
// Rendering a snapshot runs Graphviz over every node of a scene, and loading
// a network from MongoDB costs a round trip; both are keyed by content and
// cached through the [Cache] interface.
//
// # Backends
//
//   - [FileCache]: sharded JSON files, for the CLI
//   - [RedisCache]: shared cache for `netview serve`
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from content hashes and render options, so a scene
// that differs only by camera or selection produces a different snapshot key.
// [ScopedKeyer] prefixes keys per network for isolation.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/netview/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	// Expired entries read as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Instrumented reports hits, misses and writes to the registered
// observability cache hooks under keyType.
type Instrumented struct {
	Cache
	keyType string
}

// Instrument wraps c so its traffic reaches [observability.Cache].
func Instrument(c Cache, keyType string) *Instrumented {
	return &Instrumented{Cache: c, keyType: keyType}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, c.keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, c.keyType)
	}
	return data, ok, nil
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}

var _ Cache = (*Instrumented)(nil)

// Default TTLs per entry kind.
const (
	TTLNetwork  = 24 * time.Hour
	TTLSnapshot = 7 * 24 * time.Hour
)
