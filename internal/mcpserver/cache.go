package mcpserver

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// docCache holds loaded documents for the lifetime of the server. Entries
// are evicted least recently used first once the cache is full, and expire
// after the TTL they were stored with. Concurrent loads of the same key are
// collapsed into one.
type docCache struct {
	entries  *lru.Cache
	loads    singleflight.Group
	sweeping atomic.Bool
}

type docEntry struct {
	spec      *loadedSpec
	expiresAt time.Time
}

func (e docEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func newDocCache(size int) *docCache {
	entries, err := lru.New(max(size, 1))
	if err != nil {
		// lru.New only rejects a non-positive size.
		panic(err)
	}
	return &docCache{entries: entries}
}

var specCache = newDocCache(cfg.CacheMaxSize)

// get returns the cached spec for key, or nil. An expired entry is removed.
func (c *docCache) get(key string) *loadedSpec {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil
	}
	e := v.(docEntry)
	if e.expired(time.Now()) {
		c.entries.Remove(key)
		return nil
	}
	return e.spec
}

// put stores spec under key until ttl has elapsed.
func (c *docCache) put(key string, spec *loadedSpec, ttl time.Duration) {
	c.entries.Add(key, docEntry{spec: spec, expiresAt: time.Now().Add(ttl)})
}

// load returns the cached spec for key, calling fn to produce it on a miss.
// Callers racing on the same key share one call to fn.
func (c *docCache) load(key string, ttl time.Duration, fn func() (*loadedSpec, error)) (*loadedSpec, error) {
	if spec := c.get(key); spec != nil {
		return spec, nil
	}
	v, err, _ := c.loads.Do(key, func() (any, error) {
		if spec := c.get(key); spec != nil {
			return spec, nil
		}
		spec, err := fn()
		if err != nil {
			return nil, err
		}
		c.put(key, spec, ttl)
		return spec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loadedSpec), nil
}

// sweep removes every expired entry.
func (c *docCache) sweep() {
	now := time.Now()
	for _, k := range c.entries.Keys() {
		if v, ok := c.entries.Peek(k); ok && v.(docEntry).expired(now) {
			c.entries.Remove(k)
		}
	}
}

// startSweeper sweeps the cache every interval until ctx is done. Only one
// sweeper runs at a time.
func (c *docCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeping.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeping.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *docCache) reset() {
	c.entries.Purge()
}

func (c *docCache) size() int {
	return c.entries.Len()
}
