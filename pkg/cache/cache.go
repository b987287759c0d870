// Package cache stores compiled layout artifacts between runs.
//
// Compiling a large layout is dominated by polygon booleans and glyph
// rendering, while the inputs are small: the layout file and the output
// options. The pipeline hashes those inputs with a [Keyer] and looks the
// result up here before compiling.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a user cache directory
//   - [RedisCache]: a shared Redis instance (redis:// or rediss://)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing, used with --no-cache
//
// All backends treat an unreadable entry as a miss.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/masktower/pkg/errors"
)

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Open returns the cache selected by url. An empty url opens a FileCache in
// dir; "none" disables caching.
func Open(ctx context.Context, url, dir string) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch {
	case url == "":
		c, err = NewFileCache(dir)
	case url == "none":
		c = NewNullCache()
	case strings.HasPrefix(url, "redis"):
		if err = errors.ValidateCacheURL(url); err == nil {
			c, err = NewRedisCache(ctx, url)
		}
	default:
		if err = errors.ValidateCacheURL(url); err == nil {
			c, err = NewMongoCache(ctx, url)
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
