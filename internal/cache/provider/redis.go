package provider

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis provider: nil client")

const redisScanBatch = 500

type RedisConfig struct {
	Client goredis.UniversalClient
	// KeyPrefix scopes Clear; only keys under it are removed.
	KeyPrefix string
}

// Redis shares entries between processes. It does not own the client.
type Redis struct {
	rdb    goredis.UniversalClient
	prefix string
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, prefix: cfg.KeyPrefix}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := p.rdb.Scan(ctx, cursor, p.prefix+"*", redisScanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := p.rdb.Unlink(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (p *Redis) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *Redis) Close(context.Context) error {
	return nil
}
