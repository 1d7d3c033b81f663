package provider

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"
)

type BigCacheConfig struct {
	LifeWindow         time.Duration
	HardMaxCacheSizeMB int
}

// BigCache ignores per-entry TTL and cost; entries live for LifeWindow.
type BigCache struct {
	c *bc.BigCache
}

func NewBigCache(cfg BigCacheConfig) (*BigCache, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &BigCache{c: c}, nil
}

func (p *BigCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *BigCache) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	if err := p.c.Set(key, value); err != nil {
		return false, err
	}
	return true, nil
}

func (p *BigCache) Del(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *BigCache) Clear(context.Context) error {
	return p.c.Reset()
}

func (p *BigCache) Close(context.Context) error {
	return p.c.Close()
}
