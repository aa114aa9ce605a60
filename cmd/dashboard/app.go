package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arts-recruitment/dashboard/config"
	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/infrastructure/persistence/memory"
	"github.com/arts-recruitment/dashboard/internal/infrastructure/source"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app bundles what every subcommand needs.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

// newApp loads configuration and sets up the logger. Logs go to stderr so
// command output on stdout stays clean.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dataSource != "" {
		cfg.Data.Source = opts.dataSource
	}
	if opts.logLevel != "" {
		cfg.Observability.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Observability.LogFormat = opts.logFormat
	}

	log := logger.New(logger.Options{
		Output:    cmd.ErrOrStderr(),
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    cfg.Observability.LogFormat,
		AddCaller: cfg.App.Debug,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)

	return &app{cfg: cfg, log: log}, nil
}

// newClassifier builds a classifier for the configured current year with the
// strict rule set registered for every configured school.
func (a *app) newClassifier() *enrollment.Classifier {
	return enrollment.NewClassifier(enrollment.YearLabel(a.cfg.Data.CurrentYear), a.cfg.Data.StrictSchools...)
}

func (a *app) newSource() enrollment.Source {
	return source.New(source.Config{
		Location: a.cfg.Data.Source,
		Timeout:  a.cfg.Data.Timeout,
		MaxBytes: a.cfg.Data.MaxBytes,
	}, a.log)
}

// loadStore reads the dataset once into a fresh store, for one-shot commands.
func (a *app) loadStore(ctx context.Context) (*memory.SnapshotStore, error) {
	snap, err := a.newSource().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", a.cfg.Data.Source, err)
	}
	store := memory.NewSnapshotStore()
	store.Replace(snap)
	return store, nil
}
