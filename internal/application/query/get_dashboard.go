package query

import (
	"context"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Применяет переходы состояния к начальному выбору и возвращает итоговое
// состояние вместе со списком студентов. Неизвестные школы и программы
// игнорируются, как и в интерфейсе.
// ══════════════════════════════════════════════════════════════════════════════

// GetDashboardQuery describes the requested selection. Empty fields keep the
// initial selection.
type GetDashboardQuery struct {
	School  string `validate:"max=200"`
	Program string `validate:"max=100"`
	Search  string `validate:"max=200"`
	Filter  string `validate:"max=32"`
}

// GetDashboardResult is the resolved state and its roster.
type GetDashboardResult struct {
	State    enrollment.State `json:"state"`
	Schools  []string         `json:"schools"`
	Programs []string         `json:"programs"`

	// Roster is nil when the selected school has no programs.
	Roster *GetRosterResult `json:"roster,omitempty"`

	GeneratedAt string `json:"generated_at,omitempty"`
}

// GetDashboardHandler обрабатывает запрос.
type GetDashboardHandler struct {
	store   enrollment.SnapshotStore
	rosters *RosterService
}

// NewGetDashboardHandler создаёт обработчик.
func NewGetDashboardHandler(store enrollment.SnapshotStore, rosters *RosterService) *GetDashboardHandler {
	return &GetDashboardHandler{store: store, rosters: rosters}
}

// Handle resolves the state: initial selection, then school, program,
// filter and search, in that order.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*GetDashboardResult, error) {
	if err := validateQuery("GetDashboard", q); err != nil {
		return nil, err
	}
	filter, err := enrollment.ParseFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	snap, err := h.store.Current()
	if err != nil {
		return nil, err
	}
	ds := snap.Dataset

	state := enrollment.InitialState(ds).
		SelectSchool(ds, q.School).
		SwitchProgram(ds, q.Program).
		WithFilter(filter).
		WithSearch(q.Search)

	res := &GetDashboardResult{
		State:       state,
		Schools:     enrollment.SchoolNames(ds),
		Programs:    enrollment.ProgramNames(ds, state.School),
		GeneratedAt: snap.Metadata.GeneratedAt,
	}
	if res.Programs == nil {
		res.Programs = []string{}
	}

	if rec, ok := ds.Program(state.School, state.Program); ok {
		res.Roster = buildRoster(ctx, h.rosters, snap, state.School, state.Program, rec, state.Search, state.Filter)
	}
	return res, nil
}
