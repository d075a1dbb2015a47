package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	tcerrors "github.com/matzehuels/tagcloud/pkg/errors"
)

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int

	// Prefix is prepended to every key, e.g. "tagcloud:".
	Prefix string
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
	retry  time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis ping %s", opts.Addr)
	}
	return NewRedisCacheFromClient(rdb, opts.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client. Close closes it.
func NewRedisCacheFromClient(rdb redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix, retry: 50 * time.Millisecond}
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoffN(ctx, 3, c.retry, func() error {
		b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
		if err != nil {
			return classifyRedis(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis get")
	}
	return data, true, nil
}

// Set stores a value. A zero ttl stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoffN(ctx, 3, c.retry, func() error {
		return classifyRedis(c.rdb.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis set")
	}
	return nil
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis del")
	}
	return nil
}

// Clear deletes every key under the prefix and returns how many were
// removed.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	var deleted int
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis del %s", iter.Val())
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, tcerrors.Wrap(tcerrors.ErrCodeCache, err, "redis scan")
	}
	return deleted, nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// classifyRedis marks everything except a missing key as retryable.
func classifyRedis(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return Retryable(err)
}

var _ Cache = (*RedisCache)(nil)
