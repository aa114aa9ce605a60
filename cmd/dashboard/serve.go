package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arts-recruitment/dashboard/config"
	"github.com/arts-recruitment/dashboard/internal/application/command"
	"github.com/arts-recruitment/dashboard/internal/application/query"
	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/infrastructure/persistence/memory"
	"github.com/arts-recruitment/dashboard/internal/infrastructure/persistence/redis"
	httpserver "github.com/arts-recruitment/dashboard/internal/interface/http"
	"github.com/arts-recruitment/dashboard/internal/interface/http/handlers"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API and UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				a.cfg.HTTP.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (overrides HTTP_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides HTTP_PORT)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	log := a.log

	log.Info("starting dashboard",
		logger.String("version", cfg.App.Version),
		logger.String("source", cfg.Data.Source),
		logger.String("current_year", cfg.Data.CurrentYear),
		logger.Any("features", cfg.Features.Enabled()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 1. Хранилище и источник данных
	// ─────────────────────────────────────────────────────────────────────────

	store := memory.NewSnapshotStore()
	src := a.newSource()

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Redis (опционально, кеш классифицированных списков)
	// ─────────────────────────────────────────────────────────────────────────

	var (
		rosterCache enrollment.RosterCache
		purger      command.CachePurger
		redisCache  *redis.Cache
	)
	if cfg.Redis.Enabled && cfg.Features.IsEnabled(config.FeatureRosterCache) {
		redisCache = a.connectRedis(ctx)
		if redisCache != nil {
			defer redisCache.Close()
			rc := redis.NewRosterCache(redisCache, cfg.Redis.RosterTTL, log)
			rosterCache = rc
			purger = rc
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Application layer
	// ─────────────────────────────────────────────────────────────────────────

	rosters := query.NewRosterService(a.newClassifier(), rosterCache, log)
	reload := command.NewReloadDatasetHandler(src, store, purger, log)

	// Первая загрузка. Ошибка не останавливает сервер: API отвечает 503 до
	// успешной перезагрузки.
	if _, err := reload.Handle(ctx, command.ReloadDatasetCommand{Reason: "startup"}); err != nil {
		log.Warn("initial dataset load failed, serving unavailable until reload", logger.Err(err))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. Health checks
	// ─────────────────────────────────────────────────────────────────────────

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("dataset", handlers.NewDatasetCheck(store))
	if redisCache != nil {
		health.AddOptionalCheck("redis", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HTTP server
	// ─────────────────────────────────────────────────────────────────────────

	srvCfg := httpserver.DefaultConfig()
	srvCfg.Host = cfg.HTTP.Host
	srvCfg.Port = cfg.HTTP.Port
	srvCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	srvCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	srvCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	srvCfg.EnableCORS = cfg.HTTP.EnableCORS
	srvCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	srvCfg.StaticDir = cfg.HTTP.StaticDir
	srvCfg.Version = cfg.App.Version

	server := httpserver.NewServer(srvCfg, httpserver.Dependencies{
		Catalog:       query.NewCatalogHandler(store),
		Roster:        query.NewGetRosterHandler(store, rosters),
		Dashboard:     query.NewGetDashboardHandler(store, rosters),
		Report:        query.NewReportHandler(store),
		Reload:        reload,
		Store:         store,
		Features:      cfg.Features,
		Logger:        log,
		HealthChecker: health,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────

	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Err(err))
		return err
	}
	<-errCh

	log.Info("dashboard stopped gracefully")
	return nil
}

// connectRedis returns nil when Redis cannot be reached; the dashboard then
// classifies rosters on every request.
func (a *app) connectRedis(ctx context.Context) *redis.Cache {
	rc := a.cfg.Redis
	cfg := redis.DefaultConfig()
	cfg.Host = rc.Host
	cfg.Port = rc.Port
	cfg.Password = rc.Password
	cfg.DB = rc.DB
	if rc.PoolSize > 0 {
		cfg.PoolSize = rc.PoolSize
	}
	if rc.MinIdleConns > 0 {
		cfg.MinIdleConns = rc.MinIdleConns
	}
	if rc.DialTimeout > 0 {
		cfg.DialTimeout = rc.DialTimeout
	}
	if rc.ReadTimeout > 0 {
		cfg.ReadTimeout = rc.ReadTimeout
	}
	if rc.WriteTimeout > 0 {
		cfg.WriteTimeout = rc.WriteTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cache, err := redis.NewCache(connectCtx, cfg, a.log)
	if err != nil {
		a.log.Warn("redis unavailable, roster cache disabled",
			logger.String("addr", cfg.Addr()),
			logger.Err(err),
		)
		return nil
	}
	a.log.Info("connected to redis", logger.String("addr", cfg.Addr()))
	return cache
}
