package cache

import "time"

// Cache is the interface for the client's bounded local caches (balance
// records, contract metadata). Cached values are a performance optimization
// only, never a source of truth.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL. A write always replaces
	// the previous entry wholesale; there are no partial merges.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()

	// Close closes the cache and releases resources.
	Close()
}
