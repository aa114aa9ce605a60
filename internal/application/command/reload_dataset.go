// Package command contains write operations (CQRS - Commands).
// The dashboard has one: replacing the in-memory dataset with a fresh load.
package command

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RELOAD DATASET COMMAND
// Loads the dataset once and swaps it into the snapshot store. Used at
// startup and by the manual "Retry" action; never scheduled automatically.
// ══════════════════════════════════════════════════════════════════════════════

// ReloadDatasetCommand asks for a fresh load.
type ReloadDatasetCommand struct {
	// Reason is logged, e.g. "startup" or "manual".
	Reason string

	// CorrelationID for tracing across logs.
	CorrelationID string
}

// ReloadDatasetResult describes the snapshot now in service.
type ReloadDatasetResult struct {
	Source      string        `json:"source"`
	Fingerprint string        `json:"fingerprint"`
	Changed     bool          `json:"changed"`
	Schools     int           `json:"schools"`
	GeneratedAt string        `json:"generated_at,omitempty"`
	LoadedAt    time.Time     `json:"loaded_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// CachePurger drops memoized rosters after the dataset changes.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// ReloadDatasetHandler executes reloads. Concurrent callers share one load.
type ReloadDatasetHandler struct {
	source enrollment.Source
	store  enrollment.SnapshotStore
	purger CachePurger
	log    *logger.Logger

	group singleflight.Group
}

// NewReloadDatasetHandler creates the handler. purger may be nil.
func NewReloadDatasetHandler(
	source enrollment.Source,
	store enrollment.SnapshotStore,
	purger CachePurger,
	log *logger.Logger,
) *ReloadDatasetHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReloadDatasetHandler{
		source: source,
		store:  store,
		purger: purger,
		log:    log.With(logger.Component("reload")),
	}
}

// Handle loads the dataset. On failure the error is recorded in the store and
// returned; a snapshot loaded earlier stays in service.
func (h *ReloadDatasetHandler) Handle(ctx context.Context, cmd ReloadDatasetCommand) (*ReloadDatasetResult, error) {
	v, err, joined := h.group.Do("reload", func() (interface{}, error) {
		return h.reload(ctx, cmd)
	})
	if joined {
		h.log.Debug("joined in-flight reload", logger.String("reason", cmd.Reason))
	}
	if err != nil {
		return nil, err
	}
	return v.(*ReloadDatasetResult), nil
}

func (h *ReloadDatasetHandler) reload(ctx context.Context, cmd ReloadDatasetCommand) (*ReloadDatasetResult, error) {
	log := h.log.With(
		logger.String("reason", cmd.Reason),
		logger.String("source", h.source.Describe()),
	)
	if cmd.CorrelationID != "" {
		log = log.WithRequestID(cmd.CorrelationID)
	}

	start := time.Now()
	snap, err := h.source.Load(ctx)
	if err != nil {
		h.store.Fail(err)
		log.Error("dataset load failed", logger.Err(err), logger.Latency(time.Since(start)))
		return nil, shared.WrapError("dataset", "Reload", shared.ErrServiceUnavailable, "dataset reload failed", err)
	}

	changed := true
	if prev, err := h.store.Current(); err == nil && prev.Fingerprint == snap.Fingerprint {
		changed = false
	}
	h.store.Replace(snap)

	if changed && h.purger != nil {
		if err := h.purger.Purge(ctx); err != nil {
			log.Warn("roster cache purge failed", logger.Err(err))
		}
	}

	res := &ReloadDatasetResult{
		Source:      snap.Source,
		Fingerprint: snap.Fingerprint,
		Changed:     changed,
		Schools:     len(snap.Dataset),
		GeneratedAt: snap.Metadata.GeneratedAt,
		LoadedAt:    snap.LoadedAt,
		Duration:    time.Since(start),
	}
	log.Info("dataset loaded",
		logger.String("fingerprint", res.Fingerprint),
		logger.Bool("changed", res.Changed),
		logger.Int("schools", res.Schools),
		logger.Latency(res.Duration),
	)
	return res, nil
}
