// Package postgres stores session cache entries in a postgres table created
// by internal/migration.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	apperrors "lora/internal/errors"
	"lora/ports"
)

// Open connects to postgres with the lib/pq driver.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to postgres", err)
	}
	return db, nil
}

// sessionCache implements ports.SessionCache over the session_cache table.
// Expired rows are invisible to Get and removed by PurgeExpired.
type sessionCache struct {
	db  *sqlx.DB
	now func() time.Time
}

// SessionCache adds maintenance operations to ports.SessionCache.
type SessionCache interface {
	ports.SessionCache
	PurgeExpired(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// NewSessionCache creates a new postgres-backed session cache
func NewSessionCache(db *sqlx.DB) SessionCache {
	return &sessionCache{db: db, now: time.Now}
}

// Get returns ports.ErrCacheMiss for absent or expired keys.
func (c *sessionCache) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM session_cache WHERE key = $1 AND expires_at > $2`

	var value []byte
	err := c.db.GetContext(ctx, &value, query, key, c.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrCacheMiss
		}
		return nil, apperrors.DatabaseError("failed to get cache entry", err)
	}
	return value, nil
}

// Set inserts or replaces the entry for key.
func (c *sessionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.ValidationError(fmt.Sprintf("cache ttl must be positive, got %s", ttl))
	}
	now := c.now()

	query := `INSERT INTO session_cache (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`

	if _, err := c.db.ExecContext(ctx, query, key, value, now.Add(ttl), now); err != nil {
		return apperrors.DatabaseError("failed to set cache entry", err)
	}
	return nil
}

// Delete removes the entry; deleting an absent key is not an error.
func (c *sessionCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session_cache WHERE key = $1`, key); err != nil {
		return apperrors.DatabaseError("failed to delete cache entry", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and reports how many were removed.
func (c *sessionCache) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM session_cache WHERE expires_at <= $1`, c.now())
	if err != nil {
		return 0, apperrors.DatabaseError("failed to purge cache", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.DatabaseError("failed to count purged rows", err)
	}
	return n, nil
}

func (c *sessionCache) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return apperrors.DatabaseError("postgres unreachable", err)
	}
	return nil
}
