package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/court-status-fetcher/internal/scraper"
)

// Cache holds recent successful fetch results.
type Cache interface {
	Get(key string) (scraper.FetchResult, bool)
	Set(key string, value scraper.FetchResult) error
	Delete(key string)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	MaxSize    int       `json:"max_size"`
	LastAccess time.Time `json:"last_access"`
}

// LRUCache bounds go-cache by item count, evicting the entry closest to
// expiry when full.
type LRUCache struct {
	cache   *cache.Cache
	mu      sync.Mutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, ttl time.Duration) Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

func (c *LRUCache) Get(key string) (scraper.FetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if result, ok := data.(scraper.FetchResult); ok {
			c.stats.Hits++
			return result, true
		}
	}

	c.stats.Misses++
	return scraper.FetchResult{}, false
}

// Set stores only SUCCESS results; anything else is rejected.
func (c *LRUCache) Set(key string, value scraper.FetchResult) error {
	if value.Status != scraper.StatusSuccess {
		return fmt.Errorf("refusing to cache %s result", value.Status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.cache.ItemCount()
	s.MaxSize = c.maxSize
	return s
}

func (c *LRUCache) removeOldest() {
	items := c.cache.Items()

	var oldestKey string
	var oldest int64
	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// GenerateCacheKey normalizes a query into a cache key. The captcha is not
// part of the key.
func GenerateCacheKey(q scraper.QueryRequest) string {
	norm := func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
	return fmt.Sprintf("case:%s:%s:%s", norm(q.CaseType), norm(q.CaseNumber), norm(q.CaseYear))
}
