package query

import (
	"context"
	"fmt"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG QUERIES
// Списки школ и программ для выпадающего списка и вкладок.
// ══════════════════════════════════════════════════════════════════════════════

// SchoolsResult lists schools and the initial selection.
type SchoolsResult struct {
	Schools     []string         `json:"schools"`
	Initial     enrollment.State `json:"initial"`
	GeneratedAt string           `json:"generated_at,omitempty"`
	Fingerprint string           `json:"fingerprint"`
}

// ProgramsResult lists a school's programs and the default tab.
type ProgramsResult struct {
	School         string   `json:"school"`
	Programs       []string `json:"programs"`
	DefaultProgram string   `json:"default_program,omitempty"`
}

// CatalogHandler answers school and program listings.
type CatalogHandler struct {
	store enrollment.SnapshotStore
}

// NewCatalogHandler создаёт обработчик.
func NewCatalogHandler(store enrollment.SnapshotStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// Schools returns every school sorted by name.
func (h *CatalogHandler) Schools(_ context.Context) (*SchoolsResult, error) {
	snap, err := h.store.Current()
	if err != nil {
		return nil, err
	}
	return &SchoolsResult{
		Schools:     enrollment.SchoolNames(snap.Dataset),
		Initial:     enrollment.InitialState(snap.Dataset),
		GeneratedAt: snap.Metadata.GeneratedAt,
		Fingerprint: snap.Fingerprint,
	}, nil
}

// Programs returns a school's programs sorted by name.
func (h *CatalogHandler) Programs(_ context.Context, school string) (*ProgramsResult, error) {
	snap, err := h.store.Current()
	if err != nil {
		return nil, err
	}
	if !snap.Dataset.HasSchool(school) {
		return nil, fmt.Errorf("school %q: %w", school, shared.ErrSchoolNotFound)
	}
	def, _ := enrollment.DefaultProgram(snap.Dataset, school)
	return &ProgramsResult{
		School:         school,
		Programs:       enrollment.ProgramNames(snap.Dataset, school),
		DefaultProgram: def,
	}, nil
}
