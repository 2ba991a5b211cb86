package domain

// ImageCache is a bounded least-recently-used map from an image origin to its encoded form. It avoids re-downloading
// and re-encoding the same image over and over when several commands are issued in the same conversation.
type ImageCache interface {
	// Get returns the cached image. A hit makes the entry the most recently used one.
	Get(key ImageOrigin) (EncodedImage, bool)
	// Put inserts or overwrites an entry as the most recently used one, evicting the least recently used entry
	// if the cache is full.
	Put(key ImageOrigin, value EncodedImage)
	// Stats returns the current size and the cumulative hit/miss counters.
	Stats() CacheStats
	// Clear removes all entries. The hit/miss counters are lifetime counters and survive a clear.
	Clear()
}

type CacheStats struct {
	Size     int
	MaxSize  int
	Hits     int64
	Misses   int64
	HitRatio float64
}

// HitRatio returns hits/(hits+misses), or 0 if the cache was never accessed.
func HitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
