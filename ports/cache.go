package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by SessionCache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// SessionCache is a key to bytes store with expiry. Implementations must
// keep keys of different sessions apart; callers build keys with the
// session key as a prefix.
type SessionCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
