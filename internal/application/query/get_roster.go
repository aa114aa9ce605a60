// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ROSTER QUERY
// Возвращает классифицированный и отфильтрованный список студентов программы.
// Поиск и фильтр применяются заново при каждом запросе.
// ══════════════════════════════════════════════════════════════════════════════

// GetRosterQuery содержит параметры запроса списка студентов.
type GetRosterQuery struct {
	School  string `validate:"required,max=200"`
	Program string `validate:"required,max=100"`

	// Search - подстрока имени или ID (без учёта регистра).
	Search string `validate:"max=200"`

	// Filter - "", "all", "nerd", "late" или "withdrew".
	Filter string `validate:"max=32"`
}

// YearCellDTO is one year column of a roster row.
type YearCellDTO struct {
	Year     string `json:"year"`
	Enrolled bool   `json:"enrolled"`
	Grade    string `json:"grade,omitempty"`
	Course   string `json:"course,omitempty"`

	// Current marks the column of the current year.
	Current bool `json:"current"`

	// GradeTag is "6", "7" or "8" when the grade text contains that digit.
	GradeTag string `json:"grade_tag,omitempty"`
}

// RosterRowDTO is one student row.
type RosterRowDTO struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	YearsEnrolled  int                        `json:"years_enrolled"`
	Cells          []YearCellDTO              `json:"cells"`
	Classification *enrollment.Classification `json:"classification,omitempty"`
}

// ClassificationCounts are the chip badges, computed over the whole program.
type ClassificationCounts struct {
	Nerd         int `json:"nerd"`
	Late         int `json:"late"`
	Withdrew     int `json:"withdrew"`
	Unclassified int `json:"unclassified"`
}

// GetRosterResult содержит результат запроса.
type GetRosterResult struct {
	School      string `json:"school"`
	Program     string `json:"program"`
	CurrentYear string `json:"current_year"`

	// Years - порядок колонок.
	Years []string `json:"years"`

	Search string                          `json:"search"`
	Filter enrollment.ClassificationFilter `json:"filter"`

	// Rows - только видимые строки, в порядке набора данных.
	Rows []RosterRowDTO `json:"rows"`

	Total   int                  `json:"total"`
	Visible int                  `json:"visible"`
	Counts  ClassificationCounts `json:"counts"`

	Fingerprint string `json:"fingerprint"`
	Cached      bool   `json:"cached"`
}

// GetRosterHandler обрабатывает запросы списка студентов.
type GetRosterHandler struct {
	store   enrollment.SnapshotStore
	rosters *RosterService
}

// NewGetRosterHandler создаёт обработчик.
func NewGetRosterHandler(store enrollment.SnapshotStore, rosters *RosterService) *GetRosterHandler {
	return &GetRosterHandler{store: store, rosters: rosters}
}

// Handle выполняет запрос.
func (h *GetRosterHandler) Handle(ctx context.Context, q GetRosterQuery) (*GetRosterResult, error) {
	if err := validateQuery("GetRoster", q); err != nil {
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

	if !snap.Dataset.HasSchool(q.School) {
		return nil, fmt.Errorf("school %q: %w", q.School, shared.ErrSchoolNotFound)
	}
	rec, ok := snap.Dataset.Program(q.School, q.Program)
	if !ok {
		return nil, fmt.Errorf("program %q at %q: %w", q.Program, q.School, shared.ErrProgramNotFound)
	}

	return buildRoster(ctx, h.rosters, snap, q.School, q.Program, rec, q.Search, filter), nil
}

// buildRoster renders, counts and filters a program's students.
func buildRoster(
	ctx context.Context,
	rosters *RosterService,
	snap *enrollment.Snapshot,
	school, program string,
	rec enrollment.ProgramRecord,
	search string,
	filter enrollment.ClassificationFilter,
) *GetRosterResult {
	classified, cached := rosters.Classify(ctx, snap, school, program, rec)
	current := rosters.Classifier().CurrentYear().String()

	res := &GetRosterResult{
		School:      school,
		Program:     program,
		CurrentYear: current,
		Years:       rec.Years,
		Search:      search,
		Filter:      filter,
		Rows:        make([]RosterRowDTO, 0, len(rec.Students)),
		Total:       len(rec.Students),
		Fingerprint: snap.Fingerprint,
		Cached:      cached,
	}
	if res.Years == nil {
		res.Years = []string{}
	}

	for i, st := range rec.Students {
		c := classified[i].Classification

		label := ""
		if c != nil {
			label = c.Label
		}
		res.Counts.add(label)

		row := enrollment.Row{Name: st.Name, ID: st.ID, Label: label}
		if !enrollment.IsVisible(row, search, filter) {
			continue
		}

		res.Rows = append(res.Rows, RosterRowDTO{
			ID:             st.ID,
			Name:           st.Name,
			YearsEnrolled:  st.YearsEnrolled,
			Cells:          yearCells(st, rec.Years, current),
			Classification: c,
		})
	}
	res.Visible = len(res.Rows)
	return res
}

func (c *ClassificationCounts) add(label string) {
	switch {
	case label == "":
		c.Unclassified++
	case enrollment.FilterNerd.Matches(label):
		c.Nerd++
	case enrollment.FilterLate.Matches(label):
		c.Late++
	case enrollment.FilterWithdrew.Matches(label):
		c.Withdrew++
	}
}

func yearCells(st enrollment.Student, years []string, current string) []YearCellDTO {
	cells := make([]YearCellDTO, 0, len(years))
	for _, y := range years {
		cell := YearCellDTO{Year: y, Current: y == current}
		if e, ok := st.Entry(enrollment.YearLabel(y)); ok && e.Enrolled() {
			cell.Enrolled = true
			cell.Grade = e.Grade.Raw()
			cell.Course = e.Course
			cell.GradeTag = GradeTag(cell.Grade)
		}
		cells = append(cells, cell)
	}
	return cells
}

// GradeTag picks the grade badge: the first of "6", "7", "8" contained in
// the grade text, or "" for none.
func GradeTag(grade string) string {
	for _, tag := range []string{"6", "7", "8"} {
		if strings.Contains(grade, tag) {
			return tag
		}
	}
	return ""
}
