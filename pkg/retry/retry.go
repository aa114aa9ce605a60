// Package retry runs an operation again after transient failures, waiting an
// exponentially growing, jittered interval between attempts.
//
// Only optional infrastructure is retried (the roster cache connection).
// Dataset loading is never retried here: a failed load waits for a manual
// reload.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERMANENT ERRORS
// ══════════════════════════════════════════════════════════════════════════════

type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Run returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanent
	return errors.As(err, &p)
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Notify is called before each wait with the failed attempt number (1-based).
type Notify func(attempt int, err error, wait time.Duration)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, the first one included.
	Attempts int

	// Base is the wait after the first failure; it doubles after each next one.
	Base time.Duration

	// Cap bounds a single wait.
	Cap time.Duration

	// Jitter spreads each wait by ±Jitter of its length (0..1).
	Jitter float64

	Notify Notify
}

// CacheConnect is the policy for the initial Redis ping.
func CacheConnect(notify Notify) Policy {
	return Policy{
		Attempts: 3,
		Base:     200 * time.Millisecond,
		Cap:      2 * time.Second,
		Jitter:   0.2,
		Notify:   notify,
	}
}

// Wait returns the pause after the given failed attempt.
func (p Policy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := p.Base
	for i := 1; i < attempt && (p.Cap <= 0 || d < p.Cap); i++ {
		d *= 2
	}
	if p.Cap > 0 && d > p.Cap {
		d = p.Cap
	}
	if p.Jitter > 0 {
		d += time.Duration(float64(d) * p.Jitter * (rand.Float64()*2 - 1))
	}
	return max(d, 0)
}

// Run calls op until it succeeds, returns a permanent error, runs out of
// attempts or ctx ends. The last operation error wins over ctx.Err().
func (p Policy) Run(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		last = err
		if attempt >= attempts {
			return last
		}

		wait := p.Wait(attempt)
		if p.Notify != nil {
			p.Notify(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}
