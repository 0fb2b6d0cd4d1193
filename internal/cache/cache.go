// Package cache provides an in-memory TTL cache that collapses concurrent
// misses for the same key into one fetch.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc produces a fresh value for a key
type FetchFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache holds values for ttl after a successful fetch.
// Entries are replaced whole and never modified in place.
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map
	group   singleflight.Group
}

// Option configures a Cache
type Option[V any] func(*Cache[V])

// WithClock replaces the wall clock, for tests
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// WithName labels the cache in logs
func WithName[V any](name string) Option[V] {
	return func(c *Cache[V]) {
		c.name = name
	}
}

// New creates a cache whose entries stay valid for ttl
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cache label
func (c *Cache[V]) Name() string { return c.name }

// Get returns the value for key if a valid entry exists
func (c *Cache[V]) Get(key string) (V, bool) {
	if e, ok := c.load(key); ok && c.valid(e) {
		return e.value, true
	}
	var zero V
	return zero, false
}

// GetOrFetch returns the cached value for key, or runs fetch once for all
// concurrent callers and stores the result when it succeeds. A failed fetch
// leaves the previous entry untouched.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[V]) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// another caller may have stored it while we queued
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, &entry[V]{value: v, fetchedAt: c.now()})
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		v, ok := res.Val.(V)
		if !ok {
			var zero V
			return zero, fmt.Errorf("cache %s: unexpected value type %T", c.name, res.Val)
		}
		return v, nil
	}
}

// Prune drops expired entries and returns how many were removed
func (c *Cache[V]) Prune() int {
	removed := 0
	c.entries.Range(func(k, v any) bool {
		if e, ok := v.(*entry[V]); ok && !c.valid(e) {
			c.entries.CompareAndDelete(k, v)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *Cache[V]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *Cache[V]) load(key string) (*entry[V], bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(*entry[V])
	return e, ok
}

func (c *Cache[V]) valid(e *entry[V]) bool {
	return c.now().Sub(e.fetchedAt) < c.ttl
}
