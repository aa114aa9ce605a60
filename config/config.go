package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// CurrentYearAuto derives the current year label from the clock.
const CurrentYearAuto = "auto"

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Dataset source and classification
	Data DataConfig

	// HTTP API
	HTTP HTTPConfig

	// Redis (roster cache)
	Redis RedisConfig

	// xlsx dataset generator
	Ingest IngestConfig

	// Feature Flags
	Features *FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// DataConfig describes where the dataset comes from and how it is classified.
type DataConfig struct {
	// File path or http(s):// URL of dashboard_data.json
	Source string

	// Single GET timeout for URL sources
	Timeout time.Duration

	// Document size limit
	MaxBytes int64

	// Current academic year label ("2025-2026"), resolved from "auto" at load
	CurrentYear string

	// Month the academic year rolls over, used by "auto"
	RolloverMonth time.Month

	// Schools classified with the strict (Lakeside) rules
	StrictSchools []string
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Directory holding index.html; empty disables the static UI
	StaticDir string

	EnableCORS     bool
	AllowedOrigins []string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Redis is optional; without it rosters are classified on every request
	Enabled bool

	Host     string
	Port     int
	Password string
	DB       int

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// How long a classified roster stays cached
	RosterTTL time.Duration
}

// IngestConfig holds xlsx generator settings.
type IngestConfig struct {
	// Root of the School/Program/Year.xlsx tree
	Root string

	// Output JSON file
	Output string

	// Schools whose rosters are bucketed by teacher name
	TeacherSchools []string

	FallbackProgram string

	// Schools read concurrently
	Workers int
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, console
}

// Load reads configuration from environment variables. A .env file in the
// working directory and the optional YAML file at path only fill variables
// that are not already set. Malformed values are reported together with the
// validation errors instead of falling back to defaults.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("dotenv: %w", err)
	}
	if path != "" {
		if err := loadYAMLFile(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	var r envReader
	cfg := &Config{
		App:           r.app(),
		Data:          r.data(),
		HTTP:          r.http(),
		Redis:         r.redis(),
		Ingest:        r.ingest(),
		Features:      LoadFeatureFlags(),
		Observability: r.observability(),
	}

	if err := cfg.validate(r.errs); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadYAMLFile reads a sectioned YAML file and exports it as env defaults:
//
//	data:
//	  source: https://example.org/dashboard_data.json   # DATA_SOURCE
//	features:
//	  roster_cache: false                               # FEATURE_ROSTER_CACHE
func loadYAMLFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for key, val := range flattenYAML(doc) {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return err
		}
	}
	return nil
}

func flattenYAML(doc map[string]any) map[string]string {
	out := make(map[string]string)
	for section, v := range doc {
		prefix := strings.ToUpper(section)
		if prefix == "FEATURES" {
			prefix = "FEATURE"
		}
		nested, ok := v.(map[string]any)
		if !ok {
			out[prefix] = yamlScalar(v)
			continue
		}
		for key, val := range nested {
			out[prefix+"_"+strings.ToUpper(key)] = yamlScalar(val)
		}
	}
	return out
}

func yamlScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, yamlScalar(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SECTIONS
// ══════════════════════════════════════════════════════════════════════════════

func (r *envReader) app() AppConfig {
	env := Environment(strings.ToLower(r.str("APP_ENV", string(EnvDevelopment))))
	return AppConfig{
		Name:            r.str("APP_NAME", "arts-recruitment-dashboard"),
		Environment:     env,
		Debug:           r.boolean("APP_DEBUG", env == EnvDevelopment),
		Version:         r.str("APP_VERSION", "0.1.0"),
		ShutdownTimeout: r.duration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func (r *envReader) data() DataConfig {
	rollover := r.integer("DATA_ROLLOVER_MONTH", int(timeutil.DefaultRolloverMonth))
	if rollover < 1 || rollover > 12 {
		r.fail("DATA_ROLLOVER_MONTH must be 1-12, got %d", rollover)
		rollover = int(timeutil.DefaultRolloverMonth)
	}

	year := r.str("DATA_CURRENT_YEAR", enrollment.DefaultCurrentYear.String())
	if strings.EqualFold(year, CurrentYearAuto) {
		year = timeutil.CurrentAcademicYear(time.Month(rollover))
	}

	return DataConfig{
		Source:        r.str("DATA_SOURCE", "dashboard_data.json"),
		Timeout:       r.duration("DATA_TIMEOUT", 15*time.Second),
		MaxBytes:      int64(r.integer("DATA_MAX_BYTES", 64<<20)),
		CurrentYear:   year,
		RolloverMonth: time.Month(rollover),
		StrictSchools: r.list("DATA_STRICT_SCHOOLS", enrollment.LakesideSchool),
	}
}

func (r *envReader) http() HTTPConfig {
	return HTTPConfig{
		Host:           r.str("HTTP_HOST", "0.0.0.0"),
		Port:           r.integer("HTTP_PORT", 8080),
		ReadTimeout:    r.duration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   r.duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    r.duration("HTTP_IDLE_TIMEOUT", time.Minute),
		StaticDir:      r.str("HTTP_STATIC_DIR", ""),
		EnableCORS:     r.boolean("HTTP_CORS", true),
		AllowedOrigins: r.list("HTTP_ALLOWED_ORIGINS", "*"),
	}
}

func (r *envReader) redis() RedisConfig {
	return RedisConfig{
		Enabled:      r.boolean("REDIS_ENABLED", false),
		Host:         r.str("REDIS_HOST", "localhost"),
		Port:         r.integer("REDIS_PORT", 6379),
		Password:     r.str("REDIS_PASSWORD", ""),
		DB:           r.integer("REDIS_DB", 0),
		PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
		MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 2*time.Second),
		ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
		WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		RosterTTL:    r.duration("REDIS_ROSTER_TTL", 24*time.Hour),
	}
}

func (r *envReader) ingest() IngestConfig {
	return IngestConfig{
		Root:            r.str("INGEST_ROOT", "."),
		Output:          r.str("INGEST_OUTPUT", "dashboard_data.json"),
		TeacherSchools:  r.list("INGEST_TEACHER_SCHOOLS", "March Middle School"),
		FallbackProgram: r.str("INGEST_FALLBACK_PROGRAM", "Theatre"),
		Workers:         r.integer("INGEST_WORKERS", 4),
	}
}

func (r *envReader) observability() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  r.str("LOG_LEVEL", "info"),
		LogFormat: r.str("LOG_FORMAT", "json"),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	return c.validate(nil)
}

func (c *Config) validate(errs []string) error {
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Sprintf("APP_ENV must be development, staging or production, got %q", c.App.Environment))
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		errs = append(errs, "DATA_SOURCE is required")
	}
	if !enrollment.YearLabel(c.Data.CurrentYear).Valid() {
		errs = append(errs, fmt.Sprintf("DATA_CURRENT_YEAR must look like 2025-2026 or be %q, got %q",
			CurrentYearAuto, c.Data.CurrentYear))
	}
	if c.Data.MaxBytes <= 0 {
		errs = append(errs, "DATA_MAX_BYTES must be positive")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}
	if dir := c.HTTP.StaticDir; dir != "" {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			errs = append(errs, fmt.Sprintf("HTTP_STATIC_DIR %q is not a directory", dir))
		}
	}

	if c.Redis.Enabled && c.Redis.RosterTTL <= 0 {
		errs = append(errs, "REDIS_ROSTER_TTL must be positive")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
}

// ══════════════════════════════════════════════════════════════════════════════
// ENV READER
// Пустая переменная означает значение по умолчанию; нераспознанная
// попадает в список ошибок.
// ══════════════════════════════════════════════════════════════════════════════

type envReader struct {
	errs []string
}

func (r *envReader) fail(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func lookup[T any](r *envReader, key string, def T, kind string, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		r.fail("%s: %q is not a valid %s", key, raw, kind)
		return def
	}
	return v
}

func (r *envReader) boolean(key string, def bool) bool {
	return lookup(r, key, def, "boolean", strconv.ParseBool)
}

func (r *envReader) integer(key string, def int) int {
	return lookup(r, key, def, "integer", strconv.Atoi)
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	return lookup(r, key, def, "duration", time.ParseDuration)
}

// list splits a comma-separated value, dropping blanks.
func (r *envReader) list(key string, def ...string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
