package rex

import (
	"container/list"
	"sync"
)

// DefaultCacheSize is the cache capacity used when none is given.
const DefaultCacheSize = 1000

// Cache is a bounded, LRU-ordered cache, safe for concurrent use. A hit
// refreshes an entry's recency; once the capacity is exceeded, the least
// recently used entry is evicted.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	maxSize int
	entries map[K]*list.Element
	order   *list.List // front is most recent

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// CacheStats is a point-in-time snapshot of cache effectiveness counters.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewCache creates a cache holding at most maxSize entries. A non-positive
// size falls back to DefaultCacheSize.
func NewCache[K comparable, V any](maxSize int) *Cache[K, V] {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &Cache[K, V]{
		maxSize: maxSize,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value stored under the key. A hit refreshes the entry's
// recency; both outcomes are counted.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++

		var zero V
		return zero, false
	}

	c.hits++
	c.order.MoveToFront(el)

	return el.Value.(*cacheEntry[K, V]).value, true
}

// Add stores the value under the key. Adding a present key has no effect:
// the first writer decides, and only Get refreshes an entry's recency. When
// the insert pushes the cache over capacity, the least recently used entry
// is evicted.
func (c *Cache[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})

	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry[K, V]).key)
		c.evictions++
	}
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// MaxSize returns the cache capacity.
func (c *Cache[K, V]) MaxSize() int {
	return c.maxSize
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Clear removes all entries and resets the counters.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}
