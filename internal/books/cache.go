package books

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 30 * time.Second
)

// Cache keeps recently read books. Entries expire on their own and are purged on
// every catalog mutation.
type Cache struct {
	lru *expirable.LRU[int64, BookDTO]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[int64, BookDTO](size, nil, ttl)}
}

func (c *Cache) Get(id int64) (*BookDTO, bool) {
	if c == nil {
		return nil, false
	}
	dto, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &dto, true
}

func (c *Cache) Add(dto *BookDTO) {
	if c == nil || dto == nil {
		return
	}
	c.lru.Add(dto.ID, *dto)
}

// Invalidate drops the given ids.
func (c *Cache) Invalidate(ids ...int64) {
	if c == nil {
		return
	}
	for _, id := range ids {
		c.lru.Remove(id)
	}
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
