package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ranking-gateway/gateway/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCache é a camada primária: Outcome em JSON sob uma chave versionada.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

type RedisCacheOption func(*RedisCache)

func WithCachePrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		if p := strings.Trim(prefix, ":"); p != "" {
			c.prefix = p
		}
	}
}

func NewRedisCache(rdb *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{rdb: rdb, prefix: "ranking-gateway"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// v1 muda quando o formato do Outcome mudar de forma incompatível.
func (c *RedisCache) redisKey(key domain.Key) string {
	return c.prefix + ":v1:lookup:" + string(key)
}

func (c *RedisCache) Get(ctx context.Context, key domain.Key) (domain.Outcome, bool, error) {
	raw, err := c.rdb.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Outcome{}, false, nil
	}
	if err != nil {
		return domain.Outcome{}, false, err
	}

	var o domain.Outcome
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Outcome{}, false, fmt.Errorf("decode cached outcome: %w", err)
	}
	return o, true, nil
}

// Set grava com EX quando ttl é múltiplo de segundo (o TieredCache sempre passa segundos inteiros).
func (c *RedisCache) Set(ctx context.Context, key domain.Key, o domain.Outcome, ttl time.Duration) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return c.rdb.Set(ctx, c.redisKey(key), raw, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key domain.Key) error {
	return c.rdb.Del(ctx, c.redisKey(key)).Err()
}
