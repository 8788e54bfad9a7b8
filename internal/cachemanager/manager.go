// Package cachemanager provides small typed caches over patrickmn/go-cache.
package cachemanager

import (
	"time"
)

type CacheManager[K comparable, V any] interface {
	Get(key K) (V, bool)
	GetMultiple(keys []K) (map[K]V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(keys ...K)
	Flush()
	ItemCount() int
}
