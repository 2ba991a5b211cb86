package lrucache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"kgeyst.com/visionbot/pkg/common"
	"kgeyst.com/visionbot/pkg/visionbot/domain"
	"kgeyst.com/visionbot/pkg/visionbot/infrastructure/metrics"
)

// imageCache is backed by golang-lru, which is internally locked; the counters are atomic, so the cache is safe
// for concurrent use.
type imageCache struct {
	entries *lru.Cache[domain.ImageOrigin, domain.EncodedImage]
	maxSize int
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewImageCache(config *common.Config) (domain.ImageCache, error) {
	return NewImageCacheWithSize(config.GetIntOrDefault(domain.ConfigKeyImageCacheSize, domain.DefaultImageCacheSize))
}

func NewImageCacheWithSize(maxSize int) (domain.ImageCache, error) {
	entries, err := lru.New[domain.ImageOrigin, domain.EncodedImage](maxSize)
	if err != nil {
		return nil, err
	}
	return &imageCache{
		entries: entries,
		maxSize: maxSize,
	}, nil
}

func (c *imageCache) Get(key domain.ImageOrigin) (domain.EncodedImage, bool) {
	value, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
		metrics.CacheHits.Inc()
	} else {
		c.misses.Add(1)
		metrics.CacheMisses.Inc()
	}
	return value, ok
}

func (c *imageCache) Put(key domain.ImageOrigin, value domain.EncodedImage) {
	if evicted := c.entries.Add(key, value); evicted {
		metrics.CacheEvictions.Inc()
	}
	metrics.CacheSize.Set(float64(c.entries.Len()))
}

func (c *imageCache) Stats() domain.CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return domain.CacheStats{
		Size:     c.entries.Len(),
		MaxSize:  c.maxSize,
		Hits:     hits,
		Misses:   misses,
		HitRatio: domain.HitRatio(hits, misses),
	}
}

func (c *imageCache) Clear() {
	c.entries.Purge()
	metrics.CacheSize.Set(0)
}
