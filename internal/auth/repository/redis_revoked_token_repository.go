package repository

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/secure-blog/internal/common/clock"
)

const revokedKeyPrefix = "blog:revoked:"

// RedisRevokedTokenRepository keeps each denylist entry under a key whose TTL
// matches the remaining lifetime of the token, so Redis does the expiry.
type RedisRevokedTokenRepository struct {
	rdb   goredis.UniversalClient
	clock clock.Clock
}

func NewRedisRevokedTokenRepository(rdb goredis.UniversalClient, clk clock.Clock) *RedisRevokedTokenRepository {
	return &RedisRevokedTokenRepository{rdb: rdb, clock: clk}
}

func (r *RedisRevokedTokenRepository) Revoke(ctx context.Context, jti string, username string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedKeyPrefix+jti, username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert revoked token: %w", err)
	}
	return nil
}

func (r *RedisRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// DeleteExpired is a no-op: keys carry their own TTL.
func (r *RedisRevokedTokenRepository) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}
