// Package cache provides pluggable storage for registry responses.
//
// Caching is opt-in. The default [NullCache] stores nothing, so every
// resolution in an audit run reaches the registry. When a TTL is configured
// the CLI uses a [FileCache] under the XDG cache directory, or a
// [RedisCache] when a shared cache URL is set.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores opaque byte payloads by key.
type Cache interface {
	// Get returns the cached data and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys for registry lookups.
type Keyer interface {
	// RegistryKey returns the key for the latest-version lookup of pkg
	// against the registry rooted at baseURL.
	RegistryKey(baseURL, pkg string) string
}

// DefaultKeyer namespaces keys by a hash of the registry base URL so that
// mirrors and the public registry never share entries.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RegistryKey implements Keyer.
func (DefaultKeyer) RegistryKey(baseURL, pkg string) string {
	base := strings.TrimRight(strings.ToLower(baseURL), "/")
	return hashKey("registry", base) + ":" + pkg
}
