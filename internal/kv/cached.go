package kv

import (
	"context"
	"unsafe"

	"github.com/coocood/freecache"
)

// CacheObserver counts cache hits and misses.
type CacheObserver interface {
	IncCacheHits()
	IncCacheMisses()
}

// CachedStore serves reads from an in-process freecache and writes through
// to the wrapped store. Entries never expire; every write through this
// store updates or drops the cached copy.
type CachedStore struct {
	next     Store
	cache    *freecache.Cache
	observer CacheObserver
}

// NewCachedStore wraps next with a cache of sizeMB megabytes.
func NewCachedStore(next Store, sizeMB int, observer CacheObserver) *CachedStore {
	return &CachedStore{
		next:     next,
		cache:    freecache.NewCache(sizeMB * 1024 * 1024),
		observer: observer,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally and never modifies them.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CachedStore) Get(ctx context.Context, key string) (string, error) {
	if val, err := c.cache.Get(unsafeStringToBytes(key)); err == nil {
		if c.observer != nil {
			c.observer.IncCacheHits()
		}
		return string(val), nil
	}
	if c.observer != nil {
		c.observer.IncCacheMisses()
	}

	value, err := c.next.Get(ctx, key)
	if err != nil {
		return "", err
	}
	_ = c.cache.Set([]byte(key), []byte(value), 0)
	return value, nil
}

func (c *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Del(unsafeStringToBytes(key))
		return err
	}
	_ = c.cache.Set([]byte(key), []byte(value), 0)
	return nil
}

func (c *CachedStore) Remove(ctx context.Context, key string) error {
	c.cache.Del(unsafeStringToBytes(key))
	return c.next.Remove(ctx, key)
}

func (c *CachedStore) Keys(ctx context.Context) ([]string, error) {
	return c.next.Keys(ctx)
}

func (c *CachedStore) Close() error {
	c.cache.Clear()
	return c.next.Close()
}
