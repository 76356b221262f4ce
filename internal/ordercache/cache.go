// Package ordercache caches order pages between fetches. Order events
// invalidate it wholesale; the event payload is a notification
// trigger, never written into the cache.
package ordercache

import (
	"sync"

	"github.com/beanbar/orderdesk/internal/core/ports"
)

// Cache stores order pages keyed by their query. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	pages      map[ports.ListOrdersInput]*ports.OrderPage
	generation uint64
	subs       []func()
}

func New() *Cache {
	return &Cache{pages: make(map[ports.ListOrdersInput]*ports.OrderPage)}
}

// Get returns the cached page for the query, if present.
func (c *Cache) Get(in ports.ListOrdersInput) (*ports.OrderPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[in]
	return page, ok
}

// Put stores a freshly fetched page.
func (c *Cache) Put(in ports.ListOrdersInput, page *ports.OrderPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[in] = page
}

// Invalidate drops every cached page and notifies subscribers so views
// re-fetch from the source of truth.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.pages = make(map[ports.ListOrdersInput]*ports.OrderPage)
	c.generation++
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers fn to run on every invalidation, outside the
// cache's lock.
func (c *Cache) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Generation counts invalidations since creation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
