package audiocache

import (
	"container/list"
	"errors"
	"sync"
)

// ErrItemTooLarge is returned when a value exceeds the cache capacity
var ErrItemTooLarge = errors.New("item exceeds cache capacity")

// MemoryCache is a bounded in-process audio cache with LRU eviction,
// keyed by raw text. It is the degrade-safe fallback when the remote
// store is unreachable, not a performance cache: entries only appear
// after a failed upload. It is injected into the playback cache as a
// collaborator so tests get a fresh instance per case.
type MemoryCache struct {
	capacity int64 // maximum size in bytes
	size     int64 // current size in bytes

	items    map[string]*list.Element
	eviction *list.List

	mu sync.Mutex
}

type memoryCacheEntry struct {
	key   string
	value []byte
	size  int64
}

// NewMemoryCache creates a memory cache with the given capacity in bytes
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	c.eviction.MoveToFront(elem)
	return elem.Value.(*memoryCacheEntry).value, true
}

// Put stores a value in the cache, evicting least recently used entries
// as needed to stay within capacity
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueSize := int64(len(value))
	if valueSize > c.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryCacheEntry)
		c.size += valueSize - entry.size
		entry.value = value
		entry.size = valueSize
		// A grown entry can push the cache over capacity too
		for c.size > c.capacity {
			c.evictOldest()
		}
		return nil
	}

	for c.size+valueSize > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	elem := c.eviction.PushFront(&memoryCacheEntry{
		key:   key,
		value: value,
		size:  valueSize,
	})
	c.items[key] = elem
	c.size += valueSize

	return nil
}

// Delete removes an entry from the cache
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the current cache size in bytes
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// evictOldest removes the least recently used item (lock held)
func (c *MemoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// removeElement removes an element from the cache (lock held)
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*memoryCacheEntry)
	delete(c.items, entry.key)
	c.size -= entry.size
}
