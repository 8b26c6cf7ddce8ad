// Package cache stores fetched datasets and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory (the CLI default)
//   - [RedisCache]: a shared Redis instance, for teams rendering the same data
//   - [NullCache]: caching disabled (--no-cache)
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// observability cache hooks.
//
// # Keys
//
// A [Keyer] derives keys from inputs. Datasets are keyed by source; artifacts
// by the hash of the dataset bytes plus every option that changes output:
//
//	keyer := cache.NewDefaultKeyer()
//	dk := keyer.DatasetKey(url)
//	ak := keyer.ArtifactKey(cache.Hash(raw), cache.ArtifactKeyOpts{Format: "svg", Palette: "spectral"})
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind.
const (
	// TTLDataset bounds how stale a fetched dataset may be. The upstream data
	// is published monthly at most.
	TTLDataset = 24 * time.Hour

	// TTLArtifact applies to rendered output. Artifacts are keyed by content
	// hash, so they never go stale; the TTL only bounds disk use.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
