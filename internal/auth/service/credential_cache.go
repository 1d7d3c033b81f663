package service

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/secure-blog/internal/auth/domain"
	"github.com/AlibekovAA/secure-blog/internal/common/clock"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

type credentialCacheEntry struct {
	cred      domain.Credential
	expiresAt time.Time
}

// CredentialCache spares the credential store a lookup on every authenticated
// request. Entries live for a few seconds and are dropped eagerly when this
// process changes the token version.
type CredentialCache struct {
	cache  sync.Map
	ttl    time.Duration
	clock  clock.Clock
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCredentialCache(ctx context.Context, ttl time.Duration, clock clock.Clock, log *logger.Logger) *CredentialCache {
	if ttl <= 0 {
		ttl = constants.CredentialCacheTTL
	}
	cacheCtx, cancel := context.WithCancel(ctx)
	cache := &CredentialCache{
		ttl:    ttl,
		clock:  clock,
		log:    log,
		ctx:    cacheCtx,
		cancel: cancel,
	}

	go cache.cleanup()

	return cache
}

func (c *CredentialCache) Get(username string) (domain.Credential, bool) {
	if entry, ok := c.cache.Load(username); ok {
		e := entry.(*credentialCacheEntry)
		if c.clock.Now().Before(e.expiresAt) {
			return e.cred, true
		}
		c.cache.Delete(username)
	}
	return domain.Credential{}, false
}

func (c *CredentialCache) Set(cred domain.Credential) {
	c.cache.Store(cred.Username, &credentialCacheEntry{
		cred:      cred,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}

func (c *CredentialCache) Invalidate(username string) {
	c.cache.Delete(username)
}

func (c *CredentialCache) cleanup() {
	ticker := time.NewTicker(constants.CredentialCacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := c.clock.Now()
			removed := 0
			c.cache.Range(func(key, value interface{}) bool {
				entry := value.(*credentialCacheEntry)
				if now.After(entry.expiresAt) {
					c.cache.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.log.Debugf("credential cache cleaned up %d expired entries", removed)
			}
		}
	}
}

func (c *CredentialCache) Close() {
	c.cancel()
}
