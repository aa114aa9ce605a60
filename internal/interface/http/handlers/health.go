package handlers

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH STATUS
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports service health for /health and /ready.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc returns nil when the checked dependency is fine.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the aggregated result.
type HealthStatus struct {
	// Healthy is false when a required check failed.
	Healthy bool `json:"healthy"`

	// Ready mirrors Healthy: data endpoints answer only with a loaded dataset.
	Ready bool `json:"ready"`

	// Degraded is set when only optional checks failed.
	Degraded bool `json:"degraded,omitempty"`

	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Healthy     bool      `json:"healthy"`
	Optional    bool      `json:"optional,omitempty"`
	Message     string    `json:"message,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	LastChecked time.Time `json:"last_checked,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// Обязательные проверки (датасет) влияют на готовность, необязательные
// (Redis) только помечают сервис как degraded.
// ══════════════════════════════════════════════════════════════════════════════

type probe struct {
	name     string
	fn       HealthCheckFunc
	optional bool
}

// CompositeHealthChecker runs registered checks concurrently.
type CompositeHealthChecker struct {
	mu      sync.RWMutex
	probes  []probe
	started time.Time
	version string
	timeout time.Duration
}

// NewCompositeHealthChecker creates a checker with a 2s per-check timeout.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		started: time.Now(),
		version: version,
		timeout: 2 * time.Second,
	}
}

// SetTimeout bounds each individual check.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck registers a required check, replacing one with the same name.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.register(probe{name: name, fn: check})
}

// AddOptionalCheck registers a check whose failure only degrades the service.
func (c *CompositeHealthChecker) AddOptionalCheck(name string, check HealthCheckFunc) {
	c.register(probe{name: name, fn: check, optional: true})
}

// RemoveCheck unregisters a check.
func (c *CompositeHealthChecker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = slices.DeleteFunc(c.probes, func(p probe) bool { return p.name == name })
}

func (c *CompositeHealthChecker) register(p probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.probes {
		if c.probes[i].name == p.name {
			c.probes[i] = p
			return
		}
	}
	c.probes = append(c.probes, p)
}

// Check runs every probe and aggregates the results.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	probes := slices.Clone(c.probes)
	timeout := c.timeout
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(probes) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	results := make([]CheckResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(ctx, p, timeout)
		}()
	}
	wg.Wait()

	status.Checks = make(map[string]CheckResult, len(probes))
	var failed, degraded []string
	for i, p := range probes {
		res := results[i]
		status.Checks[p.name] = res
		switch {
		case res.Healthy:
		case p.optional:
			degraded = append(degraded, p.name)
		default:
			failed = append(failed, p.name)
		}
	}

	switch {
	case len(failed) > 0:
		status.Healthy, status.Ready = false, false
		status.Message = "Some checks failed: " + strings.Join(failed, ", ")
	case len(degraded) > 0:
		status.Degraded = true
		status.Message = "Degraded: " + strings.Join(degraded, ", ")
	default:
		status.Message = "All checks passed"
	}
	return status
}

func run(ctx context.Context, p probe, timeout time.Duration) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.fn(ctx)
	res := CheckResult{
		Healthy:     err == nil,
		Optional:    p.optional,
		Message:     "OK",
		Duration:    time.Since(start).Round(time.Millisecond).String(),
		LastChecked: time.Now().UTC(),
	}
	if err != nil {
		res.Message = err.Error()
	}
	return res
}

// ══════════════════════════════════════════════════════════════════════════════
// CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// NewDatasetCheck fails with the last load error until a snapshot is in
// service.
func NewDatasetCheck(store enrollment.SnapshotStore) HealthCheckFunc {
	return func(context.Context) error {
		_, err := store.Current()
		return err
	}
}

// CacheChecker is anything that can ping its backend.
type CacheChecker interface {
	Ping(ctx context.Context) error
}

// NewCacheCheck pings the roster cache.
func NewCacheCheck(cache CacheChecker) HealthCheckFunc {
	return cache.Ping
}

// NoopHealthChecker always reports healthy. Used when no checker is wired.
type NoopHealthChecker struct {
	started time.Time
}

func NewNoopHealthChecker() *NoopHealthChecker {
	return &NoopHealthChecker{started: time.Now()}
}

func (n *NoopHealthChecker) Check(context.Context) HealthStatus {
	return HealthStatus{
		Healthy:   true,
		Ready:     true,
		Message:   "OK",
		Uptime:    time.Since(n.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}
