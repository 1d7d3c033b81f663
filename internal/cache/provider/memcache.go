package provider

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

type MemcacheConfig struct {
	Addr    string
	Timeout time.Duration
}

// Memcache keeps entries in a memcached server. Clear flushes the whole
// server, so it should not be shared with other applications.
type Memcache struct {
	mc *memcache.Client
}

func NewMemcache(cfg MemcacheConfig) *Memcache {
	mc := memcache.New(cfg.Addr)
	if cfg.Timeout > 0 {
		mc.Timeout = cfg.Timeout
	}
	return &Memcache{mc: mc}
}

func (p *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := p.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (p *Memcache) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	err := p.mc.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Del(_ context.Context, key string) error {
	err := p.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *Memcache) Clear(context.Context) error {
	return p.mc.FlushAll()
}

func (p *Memcache) Ping(context.Context) error {
	return p.mc.Ping()
}

func (p *Memcache) Close(context.Context) error {
	return p.mc.Close()
}
