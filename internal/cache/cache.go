// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/law-makers/scrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache defines the interface for extracted-page caching implementations.
//
// Entries are immutable PageContent values; callers must not modify what
// Get returns.
type Cache interface {
	// Get retrieves a cached page by key.
	// Returns the cached PageContent and a boolean indicating if the key was found.
	Get(key string) (*models.PageContent, bool)

	// Set stores a page in cache with the specified TTL.
	// If the key already exists, it is updated.
	Set(key string, data *models.PageContent, ttl time.Duration) error

	// Delete removes a cached page by key.
	// Does not error if the key doesn't exist.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Close stops background goroutines.
	Close()
}

// DefaultTTL is used when Set is called with a non-positive ttl
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	Data      *models.PageContent
	ExpiresAt time.Time
	Key       string
	Size      int64
}

// MemoryCache implements in-memory page caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.Mutex
	maxSize int64
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached page and marks it most recently used
func (mc *MemoryCache) Get(key string) (*models.PageContent, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.removeElement(element)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// Set stores a page in cache with TTL
func (mc *MemoryCache) Set(key string, data *models.PageContent, ttl time.Duration) error {
	if data == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry := &cacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
		Size:      entrySize(data),
	}

	if element, exists := mc.store[key]; exists {
		mc.size -= element.Value.(*cacheEntry).Size
		element.Value = entry
		mc.lruList.MoveToFront(element)
		mc.size += entry.Size

		log.Debug().Str("key", key).Dur("ttl", ttl).Int64("size_bytes", entry.Size).Msg("Updated cache entry")
		return nil
	}

	for mc.size+entry.Size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	mc.store[key] = mc.lruList.PushFront(entry)
	mc.size += entry.Size

	log.Debug().Str("key", key).Dur("ttl", ttl).Int64("size_bytes", entry.Size).Msg("Cached page")
	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}
	return nil
}

// Clear removes all cached pages
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// Len returns the number of live entries
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lruList.Len()
}

// must be called with lock held
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	key := element.Value.(*cacheEntry).Key
	mc.removeElement(element)
	log.Debug().Str("key", key).Msg("Evicted from cache (LRU)")
}

// must be called with lock held
func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entry.Size
}

func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				if now.After(element.Value.(*cacheEntry).ExpiresAt) {
					mc.removeElement(element)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"size_bytes":  mc.size,
		"max_size":    mc.maxSize,
		"utilization": float64(mc.size) / float64(mc.maxSize) * 100,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}

// KeyFromURL generates a cache key for a page URL
func KeyFromURL(url string) string {
	return "page::" + url
}

// entrySize roughly estimates the memory held by a page
func entrySize(data *models.PageContent) int64 {
	size := int64(len(data.HTML) + len(data.Text) + 1024)
	for _, p := range data.Paragraphs {
		size += int64(len(p.Text))
	}
	for _, l := range data.Links {
		size += int64(len(l.Href) + len(l.Text))
	}
	return size
}
