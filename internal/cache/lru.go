// Package cache implements a minimal size-bounded, access-TTL cache, used
// by each DataSource to memoize inferred column schemas. The base
// specification calls this out explicitly (Design Note 9): replace any
// third-party cache with a small size+TTL combination rather than adding a
// dependency for it.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a size-bounded LRU whose entries also expire after ttl of
// inactivity, matching the columns cache's original parameters (size 100,
// 5-minute access TTL).
type Cache struct {
	mu      sync.Mutex
	size    int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// New builds a Cache with the given max size and access TTL.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 100
	}
	return &Cache{
		size:    size,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Get returns the cached value for key, refreshing its position and TTL,
// or ok=false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	e.expiresAt = c.now().Add(c.ttl)
	return e.value, true
}

// Put inserts or refreshes key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{key: key, value: value, expiresAt: c.now().Add(c.ttl)})
	c.entries[key] = el

	if c.order.Len() > c.size {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Remove evicts key if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	e := el.Value.(*entry)
	delete(c.entries, e.key)
}

// Len returns the current number of live (not necessarily unexpired) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
