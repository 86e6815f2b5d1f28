package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "LevelBias/pkg/cache"
)

// ServiceCache adapts a pkg/cache Service (memory, Redis or layered) to
// the BytesCache API the level cache consumes. Values go through as
// strings so both backends pass them verbatim.
type ServiceCache struct {
	svc pkgcache.Service
}

func NewServiceCache(svc pkgcache.Service) *ServiceCache {
	return &ServiceCache{svc: svc}
}

func (s *ServiceCache) GetBytes(key string) ([]byte, bool, error) {
	var v string
	if err := s.svc.Get(context.Background(), key, &v); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *ServiceCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return s.svc.Set(context.Background(), key, string(value), ttl)
}
