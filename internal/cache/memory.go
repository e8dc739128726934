package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/allisson/keyring/internal/errors"
)

// MemoryCache is an in-process Cache backed by go-cache with a fixed TTL per
// entry and background eviction of expired entries.
type MemoryCache struct {
	store                *gocache.Cache
	compressionThreshold int
}

// NewMemoryCache creates a MemoryCache.
//
// Parameters:
//   - ttl: lifetime of every entry; expired entries behave as absent.
//   - compressionThreshold: encoded payloads larger than this many bytes are
//     gzip-compressed before storage.
func NewMemoryCache(ttl time.Duration, compressionThreshold int) *MemoryCache {
	return &MemoryCache{
		store:                gocache.New(ttl, 2*ttl),
		compressionThreshold: compressionThreshold,
	}
}

// Get retrieves and decodes the value stored under key into dst. Returns
// errors.ErrNotFound on a miss or when the entry has expired.
func (c *MemoryCache) Get(key string, dst any) error {
	raw, found := c.store.Get(key)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "cache miss")
	}

	data, ok := raw.([]byte)
	if !ok {
		// Corrupt entry, drop it and treat as a miss.
		c.store.Delete(key)
		return errors.Wrap(errors.ErrNotFound, "cache miss")
	}

	if err := decode(data, dst); err != nil {
		c.store.Delete(key)
		return errors.Wrap(errors.ErrNotFound, "cache miss")
	}
	return nil
}

// Set encodes value and stores it under key with the default TTL.
func (c *MemoryCache) Set(key string, value any) error {
	data, err := encode(value, c.compressionThreshold)
	if err != nil {
		return err
	}
	c.store.Set(key, data, gocache.DefaultExpiration)
	return nil
}

// Delete removes the entry stored under key.
func (c *MemoryCache) Delete(key string) {
	c.store.Delete(key)
}
