// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load once it no longer belongs to any
// one caller.
const DefaultLoadTimeout = time.Minute

type item[V any] struct {
	value   V
	expires time.Time
}

// Cache is a keyed TTL cache. Concurrent loads of one missing key share a
// single call to the loader; failed loads are not cached.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	items   map[string]item[V]
	group   singleflight.Group
	onEvict func(key string, value V)

	loadTimeout time.Duration
}

type Option[V any] func(*Cache[V])

// WithClock replaces time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// OnEvict registers a hook called for every entry that leaves the cache
// through expiry, Invalidate or Purge. It runs without the cache lock held.
func OnEvict[V any](fn func(key string, value V)) Option[V] {
	return func(c *Cache[V]) { c.onEvict = fn }
}

// WithLoadTimeout bounds each shared GetOrLoad call.
func WithLoadTimeout[V any](d time.Duration) Option[V] {
	return func(c *Cache[V]) { c.loadTimeout = d }
}

func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		ttl:         ttl,
		now:         time.Now,
		items:       make(map[string]item[V]),
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL reports the lifetime of new entries.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok && !c.now().Before(it.expires) {
		delete(c.items, key)
		c.mu.Unlock()
		c.evicted(key, it.value)
		var zero V
		return zero, false
	}
	c.mu.Unlock()
	return it.value, ok
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	old, replaced := c.items[key]
	c.items[key] = item[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	if replaced {
		c.evicted(key, old.value)
	}
}

// GetOrLoad returns the cached value for key or calls load to fill it.
// hit reports whether the value came from the cache.
//
// The load is shared by every caller waiting on key, so it runs detached
// from ctx under the cache's load timeout. A caller whose ctx ends stops
// waiting with ctx.Err(); the load carries on for the others.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (value V, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// a flight that finished just before this one may have filled the key
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, false, res.Err
		}
		return res.Val.(V), false, nil
	}
}

// Invalidate drops key and reports whether it was present.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	it, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	if ok {
		c.evicted(key, it.value)
	}
	return ok
}

// Purge drops every entry and returns how many were removed.
func (c *Cache[V]) Purge() int {
	c.mu.Lock()
	old := c.items
	c.items = make(map[string]item[V])
	c.mu.Unlock()
	for k, it := range old {
		c.evicted(k, it.value)
	}
	return len(old)
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	now := c.now()
	expired := make(map[string]V)

	c.mu.Lock()
	for k, it := range c.items {
		if !now.Before(it.expires) {
			expired[k] = it.value
			delete(c.items, k)
		}
	}
	c.mu.Unlock()

	for k, v := range expired {
		c.evicted(k, v)
	}
	return len(expired)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) evicted(key string, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}
