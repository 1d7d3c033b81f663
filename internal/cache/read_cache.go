package cache

import (
	"context"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/cache/codec"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

// ReadCache is a typed view over a Store. Every hit reports how long ago the
// value was written.
type ReadCache[V any] struct {
	store *Store
	view  string
	codec codec.Codec[V]
}

func NewReadCache[V any](store *Store, view string, c codec.Codec[V]) *ReadCache[V] {
	return &ReadCache[V]{store: store, view: view, codec: c}
}

// Get returns the cached value and its age, or ok=false for a miss. Provider
// and decode failures count as misses.
func (c *ReadCache[V]) Get(ctx context.Context, key string) (V, time.Duration, bool) {
	var zero V

	payload, age, ok := c.store.get(ctx, c.view, key)
	if !ok {
		metrics.CacheRequestsTotal.WithLabelValues(c.view, "miss").Inc()
		return zero, 0, false
	}

	v, err := c.codec.Decode(payload)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
		metrics.CacheRequestsTotal.WithLabelValues(c.view, "miss").Inc()
		c.store.log.WithFields(ctx, logger.Fields{
			"view":   c.view,
			"key":    key,
			"action": "cache_decode_failed",
		}).Warnf("cache decode failed: %v", err)
		_ = c.store.del(ctx, c.view, key)
		return zero, 0, false
	}

	metrics.CacheRequestsTotal.WithLabelValues(c.view, "hit").Inc()
	metrics.CacheEntryAgeSeconds.WithLabelValues(c.view).Observe(age.Seconds())
	return v, age, true
}

// Put overwrites the entry for key; its age restarts at zero.
func (c *ReadCache[V]) Put(ctx context.Context, key string, v V) error {
	payload, err := c.codec.Encode(v)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("encode").Inc()
		return err
	}
	return c.store.put(ctx, c.view, key, payload)
}

func (c *ReadCache[V]) Delete(ctx context.Context, key string) error {
	return c.store.del(ctx, c.view, key)
}

// FlushAll empties the whole store, not just this view.
func (c *ReadCache[V]) FlushAll(ctx context.Context) {
	c.store.FlushAll(ctx)
}
