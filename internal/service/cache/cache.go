package cache

import "time"

// BytesCache is the minimal storage API the level cache needs: raw bytes
// with TTL. Backed in-process by TTLCache or shared via RedisCache.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
