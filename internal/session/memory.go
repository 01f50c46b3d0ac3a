// Package session holds the in-process session cache used when no external
// cache backend is configured.
package session

import (
	"context"
	"sync"
	"time"

	"lora/internal"
	"lora/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache implements ports.SessionCache in process memory. Entries are
// invisible once expired and reclaimed by CleanupExpired or the janitor.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	logger  *internal.Logger
}

var _ ports.SessionCache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache.
func NewMemoryCache(logger *internal.Logger) *MemoryCache {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  logger.With("session"),
	}
}

// Get returns a copy of the stored value, or ports.ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, ports.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a copy of value until ttl elapses. A non-positive ttl deletes.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		return c.Delete(ctx, key)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.entries[key] = entry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len counts entries, expired ones included until cleanup.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CleanupExpired removes expired entries and returns how many were dropped.
func (c *MemoryCache) CleanupExpired() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor runs CleanupExpired every interval until ctx is done.
func (c *MemoryCache) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.CleanupExpired(); n > 0 {
					c.logger.Debug("expired %d cache entries", n)
				}
			}
		}
	}()
}
