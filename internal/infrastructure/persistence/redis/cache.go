// Package redis implements the Redis-backed roster cache.
// Classified rosters are memoized per dataset fingerprint, so a cached entry
// can never outlive the dataset it was computed from.
//
// Key components:
//   - Cache: JSON values with TTL over a go-redis client
//   - RosterCache: enrollment.RosterCache guarded by a circuit breaker
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arts-recruitment/dashboard/pkg/logger"
	"github.com/arts-recruitment/dashboard/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	// MaxRetries is go-redis' own per-command retry budget.
	MaxRetries int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns settings for a local Redis. Command timeouts are
// short: a slow cache is worse than classifying the roster again.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
}

// Addr returns "host:port".
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		MaxRetries:   c.MaxRetries,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolTimeout:  c.ReadTimeout + time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYS & ERRORS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// PrefixRoster namespaces memoized classified rosters.
	PrefixRoster = "roster:"

	// TTLRoster bounds memory only; keys carry the dataset fingerprint, so an
	// entry is never stale.
	TTLRoster = 24 * time.Hour

	// purgeBatch is the SCAN page size and the UNLINK batch size.
	purgeBatch = 200
)

var (
	// ErrCacheMiss is returned by Get when the key is absent.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection is returned by NewCache when Redis stays unreachable.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheEncoding wraps JSON encode and decode failures.
	ErrCacheEncoding = errors.New("cache: encoding failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Cache stores JSON values in Redis.
type Cache struct {
	client *redis.Client
	addr   string
}

// NewCache connects and pings Redis, retrying the ping with
// retry.CacheConnect. The client is closed when every attempt fails.
func NewCache(ctx context.Context, cfg Config, log *logger.Logger) (*Cache, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("redis"), logger.String("addr", cfg.Addr()))

	client := redis.NewClient(cfg.options())

	policy := retry.CacheConnect(func(attempt int, err error, wait time.Duration) {
		log.Warn("redis ping failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("wait", wait),
			logger.Err(err),
		)
	})
	err := policy.Run(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCacheConnection, cfg.Addr(), err)
	}

	log.Debug("redis ping ok", logger.Int("db", cfg.DB))
	return &Cache{client: client, addr: cfg.Addr()}, nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks that Redis answers. Used by the optional health check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get decodes the JSON stored at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheEncoding, key, err)
	}
	return nil
}

// Set stores value as JSON. A zero ttl keeps the key forever.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCacheEncoding, key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// DeleteByPattern unlinks every key matching pattern, one SCAN page at a time.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, purgeBatch).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("unlink %d keys: %w", len(keys), err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
