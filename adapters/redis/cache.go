// Package redis stores session cache entries in redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "lora/internal/errors"
	"lora/ports"
)

// Options configure the connection to redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient opens a redis client; it does not connect until first use.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// SessionCache implements ports.SessionCache with plain string keys under a
// common prefix. Expiry is left to redis.
type SessionCache struct {
	client redis.Cmdable
	prefix string
}

var _ ports.SessionCache = (*SessionCache)(nil)

// NewSessionCache wraps a redis client.
func NewSessionCache(client redis.Cmdable, prefix string) *SessionCache {
	return &SessionCache{client: client, prefix: prefix}
}

func (c *SessionCache) fullKey(key string) string {
	return c.prefix + key
}

// Get returns ports.ErrCacheMiss for absent or expired keys.
func (c *SessionCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, apperrors.CacheError("failed to get from cache", err)
	}
	return data, nil
}

// Set stores value until ttl elapses.
func (c *SessionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.fullKey(key), value, ttl).Err(); err != nil {
		return apperrors.CacheError("failed to set cache", err)
	}
	return nil
}

// Delete removes the key; deleting an absent key is not an error.
func (c *SessionCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.fullKey(key)).Err(); err != nil {
		return apperrors.CacheError("failed to delete from cache", err)
	}
	return nil
}

// Ping checks the connection.
func (c *SessionCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return apperrors.CacheError("redis unreachable", err)
	}
	return nil
}
