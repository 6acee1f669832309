package gsi

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
)

// CachedReverseGeocoder wraps a ReverseGeocoder with an in-memory LRU cache.
// Municipality boundaries and the directory are static for the life of the
// process, so entries never expire.
type CachedReverseGeocoder struct {
	inner   domain.ReverseGeocoder
	cache   *lruCache[domain.Place]
	metrics *observability.Metrics
}

// NewCachedReverseGeocoder creates a cache decorator around a reverse geocoder.
func NewCachedReverseGeocoder(inner domain.ReverseGeocoder, maxEntries int, metrics *observability.Metrics) *CachedReverseGeocoder {
	return &CachedReverseGeocoder{
		inner:   inner,
		cache:   newLRUCache[domain.Place](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedReverseGeocoder) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (domain.Place, error) {
	key := fmt.Sprintf("%.6f,%.6f", coord.Lat, coord.Lon)
	if place, ok := c.cache.get(key); ok {
		c.metrics.ReverseCache.WithLabelValues("hit").Inc()
		return place, nil
	}
	c.metrics.ReverseCache.WithLabelValues("miss").Inc()

	place, err := c.inner.ReverseGeocode(ctx, coord)
	if err != nil {
		// Failures are not cached so transient upstream errors can be retried
		// by the next request.
		return place, err
	}
	c.cache.put(key, place)
	return place, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
