// Package provider holds the byte stores behind the read cache.
//
// Get must return exactly the bytes passed to Set for the same key. Stores may
// evict on their own under pressure; the read cache treats that as a miss.
package provider

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
)

type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set reports ok=false when the store declined the write.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)
	Del(ctx context.Context, key string) error
	// Clear drops every entry this provider owns.
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}

// Pinger is implemented by providers backed by a network service.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	BackendRistretto = "ristretto"
	BackendBigCache  = "bigcache"
	BackendRedis     = "redis"
	BackendMemcache  = "memcache"
)

type Config struct {
	Backend      string
	MaxCost      int64
	KeyPrefix    string
	RedisClient  goredis.UniversalClient
	MemcacheAddr string
}

func New(cfg Config) (Provider, error) {
	switch cfg.Backend {
	case "", BackendRistretto:
		return NewRistretto(RistrettoConfig{
			NumCounters: constants.DefaultCacheCounters,
			MaxCost:     cfg.MaxCost,
			BufferItems: constants.DefaultCacheBuffer,
		})
	case BackendBigCache:
		return NewBigCache(BigCacheConfig{
			LifeWindow:         constants.DefaultBigCacheWindow,
			HardMaxCacheSizeMB: int(cfg.MaxCost >> 20),
		})
	case BackendRedis:
		return NewRedis(RedisConfig{Client: cfg.RedisClient, KeyPrefix: cfg.KeyPrefix})
	case BackendMemcache:
		return NewMemcache(MemcacheConfig{Addr: cfg.MemcacheAddr}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
