package provider

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"
)

type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// Ristretto is the default in-process store. Admission is cost based, so a
// put can be dropped under pressure.
type Ristretto struct {
	c *rc.Cache
}

func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (p *Ristretto) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for the write buffer to drain so the entry is readable as soon as
// Set returns.
func (p *Ristretto) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	ok := p.c.SetWithTTL(key, value, cost, ttl)
	p.c.Wait()
	return ok, nil
}

func (p *Ristretto) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Ristretto) Clear(context.Context) error {
	p.c.Clear()
	return nil
}

func (p *Ristretto) Close(context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}
