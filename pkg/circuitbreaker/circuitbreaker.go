// Package circuitbreaker stops calls to a failing dependency for a cooldown
// period. The dashboard wraps every roster cache call in a Breaker so that a
// dead Redis costs one fast error instead of a timeout per request.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var (
	// ErrOpen is returned without calling the operation while the breaker is open.
	ErrOpen = errors.New("circuit breaker is open")

	// ErrProbeBusy is returned in half-open state when all probe slots are taken.
	ErrProbeBusy = errors.New("circuit breaker probe in progress")
)

// Settings configures a Breaker. Zero values take the defaults noted below.
type Settings struct {
	Name string

	// TripAfter consecutive failures open the breaker (default 5).
	TripAfter int

	// CloseAfter consecutive half-open successes close it again (default 1).
	CloseAfter int

	// Cooldown is how long the breaker stays open before probing (default 30s).
	Cooldown time.Duration

	// Probes bounds concurrent calls in half-open state (default 1).
	Probes int

	// Counts decides whether an error is a failure. Nil counts every error.
	Counts func(error) bool

	OnChange func(name string, from, to State)
}

func (s Settings) withDefaults() Settings {
	if s.TripAfter <= 0 {
		s.TripAfter = 5
	}
	if s.CloseAfter <= 0 {
		s.CloseAfter = 1
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.Probes <= 0 {
		s.Probes = 1
	}
	return s
}

// Breaker is safe for concurrent use.
type Breaker struct {
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
}

// New creates a closed breaker.
func New(s Settings) *Breaker {
	return &Breaker{settings: s.withDefaults(), now: time.Now}
}

// RosterCache returns the breaker used in front of Redis: trips after three
// failures, probes again after 15 seconds.
func RosterCache(onChange func(name string, from, to State)) *Breaker {
	return New(Settings{
		Name:      "roster-cache",
		TripAfter: 3,
		Cooldown:  15 * time.Second,
		OnChange:  onChange,
	})
}

// Execute calls fn when the breaker allows it and records the result.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// State returns the current position, moving open to half-open once the
// cooldown has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.cooledDown() {
		b.transition(StateHalfOpen)
	}
	return b.state
}

// Name returns Settings.Name.
func (b *Breaker) Name() string {
	return b.settings.Name
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if !b.cooledDown() {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
	}
	if b.state == StateHalfOpen {
		if b.probes >= b.settings.Probes {
			return ErrProbeBusy
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil && (b.settings.Counts == nil || b.settings.Counts(err))

	if b.state == StateHalfOpen {
		if b.probes > 0 {
			b.probes--
		}
		if failed {
			b.transition(StateOpen)
			return
		}
		b.successes++
		if b.successes >= b.settings.CloseAfter {
			b.transition(StateClosed)
		}
		return
	}

	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.settings.TripAfter {
		b.transition(StateOpen)
	}
}

func (b *Breaker) cooledDown() bool {
	return b.now().Sub(b.openedAt) >= b.settings.Cooldown
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.failures, b.successes, b.probes = 0, 0, 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	if b.settings.OnChange != nil {
		b.settings.OnChange(b.settings.Name, from, to)
	}
}
