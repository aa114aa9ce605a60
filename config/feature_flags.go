package config

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Feature names.
const (
	FeatureRosterCache       = "roster_cache"       // memoize classified rosters in Redis
	FeatureRecruitmentReport = "recruitment_report" // GET /api/v1/report and `dashboard report`
	FeatureStaticUI          = "static_ui"          // serve HTTP_STATIC_DIR at /
	FeatureDatasetReload     = "dataset_reload"     // POST /api/v1/dataset/reload
)

// Feature describes one toggle.
type Feature struct {
	Name        string
	Description string
	Enabled     bool
}

// catalog lists every known feature with its default, in display order.
var catalog = []Feature{
	{FeatureRosterCache, "Cache classified rosters in Redis (needs REDIS_ENABLED)", true},
	{FeatureRecruitmentReport, "Enrollment trends and grade 8 recruits", true},
	{FeatureStaticUI, "Serve the dashboard UI shell from HTTP_STATIC_DIR", true},
	{FeatureDatasetReload, "Manual dataset reload (the UI retry action)", true},
}

// ErrFeatureNotFound is returned when toggling a name outside the catalog.
var ErrFeatureNotFound = errors.New("feature not found")

// FeatureFlags holds the on/off state of each feature. It is safe for
// concurrent use; a nil *FeatureFlags enables everything.
type FeatureFlags struct {
	mu    sync.RWMutex
	state map[string]bool
}

// NewFeatureFlags returns the catalog defaults.
func NewFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{state: make(map[string]bool, len(catalog))}
	for _, f := range catalog {
		ff.state[f.Name] = f.Enabled
	}
	return ff
}

// LoadFeatureFlags applies FEATURE_<NAME>=true|false overrides to the
// defaults. Values strconv.ParseBool rejects are ignored.
func LoadFeatureFlags() *FeatureFlags {
	ff := NewFeatureFlags()
	for name := range ff.state {
		raw, ok := os.LookupEnv(envKey(name))
		if !ok {
			continue
		}
		if on, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			ff.state[name] = on
		}
	}
	return ff
}

// envKey maps "roster_cache" to "FEATURE_ROSTER_CACHE".
func envKey(name string) string {
	return "FEATURE_" + strings.ToUpper(strings.ReplaceAll(name, ".", "_"))
}

// IsEnabled reports whether name is on. Unknown names are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	if ff == nil {
		return true
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	return ff.state[name]
}

// SetEnabled flips a known feature at runtime.
func (ff *FeatureFlags) SetEnabled(name string, on bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if _, ok := ff.state[name]; !ok {
		return ErrFeatureNotFound
	}
	ff.state[name] = on
	return nil
}

func (ff *FeatureFlags) EnableFeature(name string) error  { return ff.SetEnabled(name, true) }
func (ff *FeatureFlags) DisableFeature(name string) error { return ff.SetEnabled(name, false) }

// All returns every feature with its current state, in catalog order.
func (ff *FeatureFlags) All() []Feature {
	out := slices.Clone(catalog)
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	for i := range out {
		out[i].Enabled = ff.state[out[i].Name]
	}
	return out
}

// Enabled returns the sorted names of features that are on.
func (ff *FeatureFlags) Enabled() []string {
	ff.mu.RLock()
	defer ff.mu.RUnlock()
	var names []string
	for name, on := range ff.state {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
