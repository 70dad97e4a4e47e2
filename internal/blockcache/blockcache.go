// Copyright (c) The lazyfile Authors.
// Licensed under the MIT License.

// Package blockcache is an optional in-memory chunk cache. The fetch
// protocol itself never caches; embedding layers that want cached reads
// wrap their fetches with this package.
package blockcache

import (
	"fmt"
	"strconv"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"
)

const chunkKeySep = "_"

// Cache holds fetched chunks keyed by (name, aligned offset), bounded
// by total byte cost.
type Cache struct {
	blocks *ristretto.Cache
	log    zerolog.Logger
}

// New creates a cache bounded to maxBytes of chunk data.
func New(maxBytes int64, log zerolog.Logger) (*Cache, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxBytes)
	}

	blocks, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Cache{blocks: blocks, log: log}, nil
}

// chunkKey returns the cache key for the given chunk of a file.
func chunkKey(name string, offset int64) string {
	return name + chunkKeySep + strconv.FormatInt(offset, 10)
}

// GetOrCreate returns the cached chunk, or fetches and caches it.
// Admission is best effort; a rejected entry is simply refetched next
// time.
func (c *Cache) GetOrCreate(name string, offset int64, fetch func() ([]byte, error)) ([]byte, error) {
	key := chunkKey(name, offset)

	if v, ok := c.blocks.Get(key); ok {
		return v.([]byte), nil
	}

	data, err := fetch()
	if err != nil {
		return nil, err
	}

	if ok := c.blocks.Set(key, data, int64(len(data))); !ok {
		c.log.Debug().Str("key", key).Msg("chunk not admitted to cache")
	}

	return data, nil
}

// Wait blocks until buffered writes are applied. Intended for tests.
func (c *Cache) Wait() {
	c.blocks.Wait()
}

// Close releases the cache.
func (c *Cache) Close() {
	c.blocks.Close()
}
