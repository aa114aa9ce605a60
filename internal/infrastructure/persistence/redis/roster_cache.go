package redis

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/circuitbreaker"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// store is the subset of Cache the roster cache needs.
type store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

var _ store = (*Cache)(nil)

// RosterCache memoizes classified rosters in Redis.
//
// Every call goes through a circuit breaker; a miss is not a failure. When the
// circuit is open Get and Set fail fast and callers recompute.
type RosterCache struct {
	store   store
	breaker *circuitbreaker.Breaker
	ttl     time.Duration
	log     *logger.Logger
}

var _ enrollment.RosterCache = (*RosterCache)(nil)

// NewRosterCache wraps a Cache. A non-positive ttl means TTLRoster.
func NewRosterCache(cache *Cache, ttl time.Duration, log *logger.Logger) *RosterCache {
	return newRosterCache(cache, ttl, log)
}

func newRosterCache(s store, ttl time.Duration, log *logger.Logger) *RosterCache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = TTLRoster
	}
	log = log.With(logger.Component("roster_cache"))
	rc := &RosterCache{
		store: s,
		ttl:   ttl,
		log:   log,
	}
	rc.breaker = circuitbreaker.RosterCache(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	return rc
}

// Get returns the memoized roster for key.
func (c *RosterCache) Get(ctx context.Context, key enrollment.RosterKey) ([]enrollment.ClassifiedStudent, bool, error) {
	var (
		students []enrollment.ClassifiedStudent
		hit      bool
	)
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		err := c.store.Get(ctx, RosterKey(key), &students)
		switch {
		case err == nil:
			hit = true
			return nil
		case errors.Is(err, ErrCacheMiss):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return students, hit, nil
}

// Set stores a classified roster.
func (c *RosterCache) Set(ctx context.Context, key enrollment.RosterKey, students []enrollment.ClassifiedStudent) error {
	if students == nil {
		students = []enrollment.ClassifiedStudent{}
	}
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.store.Set(ctx, RosterKey(key), students, c.ttl)
	})
}

// Purge drops every memoized roster. Called after a reload; old entries are
// unreachable anyway because keys carry the dataset fingerprint.
func (c *RosterCache) Purge(ctx context.Context) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.store.DeleteByPattern(ctx, PrefixRoster+"*")
	})
	if err != nil {
		return err
	}
	c.log.Debug("roster cache purged")
	return nil
}

// BreakerState reports the circuit breaker state, for health checks.
func (c *RosterCache) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// RosterKey builds the Redis key for a memoized roster:
// roster:<fingerprint>:<year>:<rules>:<school>:<program>, with names
// path-escaped.
func RosterKey(k enrollment.RosterKey) string {
	parts := []string{
		k.Fingerprint,
		k.CurrentYear.String(),
		url.PathEscape(k.Rules),
		url.PathEscape(k.School),
		url.PathEscape(k.Program),
	}
	return PrefixRoster + strings.Join(parts, ":")
}
