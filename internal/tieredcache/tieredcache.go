// Package tieredcache composes the memory, disk, and remote stores into
// the single read/write/delete surface a cache node serves, implementing
// promote-on-read and write-through semantics across all three tiers.
package tieredcache

import (
	"errors"
	"sync"

	"github.com/dreamware/milena/internal/cachekey"
	"github.com/dreamware/milena/internal/store"
)

// Cache holds exactly one instance of each tier and serializes every
// operation under a single exclusion lock: the tiers are not
// individually atomic with respect to each other, and read-path
// promotions mutate lower tiers as a side effect of a read.
type Cache struct {
	memory store.Store
	disk   store.Store
	remote store.Store
	mu     sync.Mutex
}

// New composes the three given tiers into one Cache.
func New(memory, disk, remote store.Store) *Cache {
	return &Cache{memory: memory, disk: disk, remote: remote}
}

// Get returns the value for (bucket, key), or (nil, false, nil) if
// absent at every tier. A non-nil error means a tier other than
// "absent" failed; the operation aborts immediately without falling
// through to the remaining tiers, since partial promotion on a lower
// tier's error can mask drift against the remote tier.
func (c *Cache) Get(bucket, key string) (value []byte, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	physical := cachekey.Derive(bucket, key)

	if v, err := c.memory.Get(physical); err == nil {
		return v, true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if v, err := c.disk.Get(physical); err == nil {
		if putErr := c.memory.Put(physical, v); putErr != nil {
			return nil, false, putErr
		}
		return v, true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	v, err := c.remote.Get(physical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if err := c.memory.Put(physical, v); err != nil {
		return nil, false, err
	}
	if err := c.disk.Put(physical, v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Put writes value for (bucket, key) through every tier, remote first
// since it is the authoritative system of record: a failure there must
// not let a lower tier claim to hold the value. Memory is written last
// because it is the least durable. Each failure aborts the remainder;
// earlier successful writes are not rolled back.
func (c *Cache) Put(bucket, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	physical := cachekey.Derive(bucket, key)

	if err := c.remote.Put(physical, value); err != nil {
		return err
	}
	if err := c.disk.Put(physical, value); err != nil {
		return err
	}
	return c.memory.Put(physical, value)
}

// Delete removes (bucket, key) from every tier in the same order as
// Put: remote, disk, memory. Deleting an absent key is not an error at
// any tier.
func (c *Cache) Delete(bucket, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	physical := cachekey.Derive(bucket, key)

	if err := c.remote.Delete(physical); err != nil {
		return err
	}
	if err := c.disk.Delete(physical); err != nil {
		return err
	}
	return c.memory.Delete(physical)
}
