// Package http implements the dashboard REST API.
// It serves the loaded dataset, classified rosters, the recruitment report
// and, optionally, the static UI shell that consumes them.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/arts-recruitment/dashboard/config"
	"github.com/arts-recruitment/dashboard/internal/application/command"
	"github.com/arts-recruitment/dashboard/internal/application/query"
	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/interface/http/handlers"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server settings.
type Config struct {
	Host string
	Port int // 0 picks a free port; see Server.ListenAddr

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	EnableCORS     bool
	AllowedOrigins []string

	// StaticDir holds index.html and its assets. Empty serves API info at "/".
	StaticDir string

	// Version is reported by "/" and in response meta.
	Version string
}

// DefaultConfig listens on all interfaces, port 8080.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		Version:        "v1",
	}
}

// Address returns the configured "host:port".
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// FeatureChecker reports whether a named feature is on.
type FeatureChecker interface {
	IsEnabled(name string) bool
}

// Dependencies are the use cases the routes call. A nil handler answers 501.
type Dependencies struct {
	// Queries
	Catalog   *query.CatalogHandler
	Roster    *query.GetRosterHandler
	Dashboard *query.GetDashboardHandler
	Report    *query.ReportHandler

	// Commands
	Reload *command.ReloadDatasetHandler

	// Store backs GET /dashboard_data.json.
	Store enrollment.SnapshotStore

	// Features gates optional routes. Nil enables everything.
	Features FeatureChecker

	Logger        *logger.Logger
	HealthChecker handlers.HealthChecker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the dashboard HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	router     *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
	logger     *logger.Logger

	mu         sync.RWMutex
	running    bool
	startedAt  time.Time
	listenAddr string
}

// NewServer registers routes and middleware. Nothing listens until Start.
func NewServer(cfg Config, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = handlers.NewNoopHealthChecker()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		router: http.NewServeMux(),
		logger: log.With(logger.Component("http")),
	}
	s.setupRoutes()
	s.handler = handlers.Wrap(s.router, s.middleware()...)

	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ErrorLog:       s.logger.StdLogger(),
	}
	return s
}

// Handler returns the router wrapped in middleware, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) enabled(feature string) bool {
	return s.deps.Features == nil || s.deps.Features.IsEnabled(feature)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)

	// ─────────────────────────────────────────────────────────────────────────
	// Dataset
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /dashboard_data.json", s.handleDatasetDocument)
	if s.enabled(config.FeatureDatasetReload) {
		s.router.Handle("POST /api/v1/dataset/reload", handlers.LimitBody(1<<10)(http.HandlerFunc(s.handleReload)))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// API v1
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/v1/schools", s.handleListSchools)
	s.router.HandleFunc("GET /api/v1/schools/{school}/programs", s.handleListPrograms)
	s.router.HandleFunc("GET /api/v1/schools/{school}/programs/{program}/students", s.handleGetRoster)
	s.router.HandleFunc("GET /api/v1/dashboard", s.handleGetDashboard)
	if s.enabled(config.FeatureRecruitmentReport) {
		s.router.HandleFunc("GET /api/v1/report", s.handleGetReport)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// UI shell
	// ─────────────────────────────────────────────────────────────────────────
	if s.config.StaticDir != "" && s.enabled(config.FeatureStaticUI) {
		files := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("GET /", handlers.StaticAssets(5*time.Minute)(files))
		return
	}
	s.router.HandleFunc("GET /{$}", s.handleRoot)
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

var errAlreadyRunning = errors.New("server already running")

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Address(), err)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return errAlreadyRunning
	}
	s.running = true
	s.startedAt = time.Now()
	s.listenAddr = ln.Addr().String()
	s.mu.Unlock()

	s.logger.Info("http server listening", logger.String("address", ln.Addr().String()))

	err = s.httpServer.Serve(ln)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve: %w", err)
}

// StartAsync runs Start in a goroutine. The channel receives Start's error,
// if any, and is closed when the server has stopped.
func (s *Server) StartAsync() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.Start(); err != nil {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.IsRunning() {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// IsRunning reports whether Start is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ListenAddr returns the bound address, which differs from Config.Address
// when Port is 0. Empty until Start.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

// Uptime is zero when the server is not running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
