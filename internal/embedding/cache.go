package embedding

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the default number of vectors to keep.
const DefaultCacheCapacity = 4096

// LRUCache is a thread-safe LRU cache of vectors keyed by input text.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key    string
	vector []float32
}

// NewLRUCache creates a new LRU cache with the given capacity.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a vector from cache. Returns nil if not found.
func (c *LRUCache) Get(key string) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[key]
	if !exists {
		return nil
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).vector
}

// Put adds a vector to the cache, evicting the least recently used if full.
func (c *LRUCache) Put(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[key]; exists {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).vector = vector
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.cache, oldest.Value.(*cacheEntry).key)
			c.order.Remove(oldest)
		}
	}

	c.cache[key] = c.order.PushFront(&cacheEntry{key: key, vector: vector})
}

// Len returns the number of cached vectors.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CachedEmbedder memoises an Embedder. Concurrent misses for the same text
// share one upstream call.
type CachedEmbedder struct {
	next  Embedder
	cache *LRUCache
	group singleflight.Group
}

// NewCachedEmbedder wraps next with an LRU cache of the given capacity.
func NewCachedEmbedder(next Embedder, capacity int) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: NewLRUCache(capacity),
	}
}

// Embed returns the cached vector for text or fetches it from the wrapped embedder.
// Errors are not cached.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec := c.cache.Get(text); vec != nil {
		return vec, nil
	}

	v, err, _ := c.group.Do(text, func() (interface{}, error) {
		if vec := c.cache.Get(text); vec != nil {
			return vec, nil
		}
		vec, err := c.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Put(text, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}
