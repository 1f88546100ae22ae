package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements Service in process. Values are stored encoded so Get
// behaves like the Redis backend.
type MemoryCache struct {
	store *gocache.Cache
	locks *gocache.Cache
}

const (
	memoryDefaultTTL = 5 * time.Minute
	memoryCleanup    = time.Minute
)

// NewMemoryCache creates an in-process cache. Set with a zero ttl keeps the
// value for five minutes.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: gocache.New(memoryDefaultTTL, memoryCleanup),
		locks: gocache.New(gocache.NoExpiration, memoryCleanup),
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = gocache.DefaultExpiration
	}
	mc.store.Set(key, data, expiration)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := mc.store.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	return decode(v.([]byte), dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		mc.store.Delete(k)
	}
	return nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := mc.locks.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key string) error {
	mc.locks.Delete(key)
	return nil
}

func (mc *MemoryCache) Close() error {
	mc.store.Flush()
	mc.locks.Flush()
	return nil
}
