package cache

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/cache/provider"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

const DefaultKeyPrefix = "blog:cache"

type StoreConfig struct {
	KeyPrefix string
	// TTL bounds how long a provider keeps an entry. Zero keeps it until
	// eviction or FlushAll.
	TTL time.Duration
}

// Store is the byte-level half of the read cache, shared by every typed view.
// Keys carry a flush epoch: FlushAll moves the epoch on, so every entry written
// before it becomes unreachable at once, and then asks the provider to reclaim
// the space.
type Store struct {
	provider provider.Provider
	prefix   string
	ttl      time.Duration
	epoch    atomic.Uint64
	clock    clock.Clock
	log      *logger.Logger
}

func NewStore(p provider.Provider, config StoreConfig, clk clock.Clock, log *logger.Logger) *Store {
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Store{
		provider: p,
		prefix:   prefix,
		ttl:      config.TTL,
		clock:    clk,
		log:      log,
	}
}

func (s *Store) key(view, key string) string {
	var b strings.Builder
	b.Grow(len(s.prefix) + len(view) + len(key) + 24)
	b.WriteString(s.prefix)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(s.epoch.Load(), 10))
	b.WriteByte(':')
	b.WriteString(view)
	b.WriteByte(':')
	b.WriteString(key)
	return b.String()
}

func (s *Store) get(ctx context.Context, view, key string) ([]byte, time.Duration, bool) {
	fullKey := s.key(view, key)

	raw, ok, err := s.provider.Get(ctx, fullKey)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"view":   view,
			"key":    key,
			"action": "cache_get_failed",
		}).Warnf("cache get failed: %v", err)
		return nil, 0, false
	}
	if !ok {
		return nil, 0, false
	}

	writtenAt, payload, err := decodeEntry(raw)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"view":   view,
			"key":    key,
			"action": "cache_entry_corrupt",
		}).Warn("dropping corrupt cache entry")
		_ = s.provider.Del(ctx, fullKey)
		return nil, 0, false
	}

	age := s.clock.Since(writtenAt)
	if age < 0 {
		age = 0
	}
	return payload, age, true
}

func (s *Store) put(ctx context.Context, view, key string, payload []byte) error {
	entry := encodeEntry(s.clock.Now(), payload)

	ok, err := s.provider.Set(ctx, s.key(view, key), entry, int64(len(entry)), s.ttl)
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("put").Inc()
		return err
	}
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"view":   view,
			"key":    key,
			"action": "cache_put_dropped",
		}).Debug("cache provider dropped write")
		return nil
	}
	metrics.CacheWritesTotal.WithLabelValues(view).Inc()
	return nil
}

func (s *Store) del(ctx context.Context, view, key string) error {
	return s.provider.Del(ctx, s.key(view, key))
}

// FlushAll makes every current entry unreachable. A provider that fails to
// reclaim memory does not undo that; the failure is only logged.
func (s *Store) FlushAll(ctx context.Context) {
	epoch := s.epoch.Add(1)
	metrics.CacheFlushesTotal.Inc()

	if err := s.provider.Clear(ctx); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("clear").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"epoch":  epoch,
			"action": "cache_clear_failed",
		}).Warnf("cache clear failed: %v", err)
		return
	}

	s.log.WithFields(ctx, logger.Fields{
		"epoch":  epoch,
		"action": "cache_flushed",
	}).Info("read cache flushed")
}

// Ping reports provider reachability for health checks. In-process providers
// are always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.provider.(provider.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}
