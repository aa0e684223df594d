package cache

import "time"

// Cache is the process-local TTL cache behind market snapshot lookups and
// headline queries. One instance is shared across a cycle; values are
// overwritten wholesale on the next fetch, never mutated in place.
type Cache interface {
	// Get retrieves a value. Returns (value, true) on a hit.
	Get(key string) (any, bool)

	// Set stores a value until the TTL elapses. The return reports
	// whether the value was admitted.
	Set(key string, value any, ttl time.Duration) bool

	// Delete removes a value.
	Delete(key string)

	// Clear drops every cached value.
	Clear()

	// Close releases cache resources.
	Close()
}
