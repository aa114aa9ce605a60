package query

import (
	"context"
	"sort"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECRUITMENT REPORT QUERY
// Динамика набора по школам/программам/годам и список восьмиклассников
// последнего учебного года - кандидатов для старшей школы.
// ══════════════════════════════════════════════════════════════════════════════

// recruitGrade is the grade whose students move on to high school next year.
const recruitGrade = 8

// TrendRowDTO is one (school, program) row of the enrollment pivot.
type TrendRowDTO struct {
	School  string `json:"school"`
	Program string `json:"program"`

	// Counts has one entry per report year, zero-filled.
	Counts map[string]int `json:"counts"`
}

// RecruitDTO is a potential high-school recruit.
type RecruitDTO struct {
	School    string `json:"school"`
	Program   string `json:"program"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Course    string `json:"course"`
}

// ReportResult is the recruitment report.
type ReportResult struct {
	GeneratedAt string `json:"generated_at"`

	// Years are all year labels in the dataset, sorted.
	Years  []string      `json:"years"`
	Trends []TrendRowDTO `json:"trends"`

	// LatestYear is the year recruits are taken from; empty for an empty dataset.
	LatestYear string       `json:"latest_year"`
	Recruits   []RecruitDTO `json:"recruits"`
}

// ReportHandler builds the recruitment report from the loaded dataset.
type ReportHandler struct {
	store enrollment.SnapshotStore
}

// NewReportHandler создаёт обработчик.
func NewReportHandler(store enrollment.SnapshotStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// Handle builds the report.
func (h *ReportHandler) Handle(_ context.Context) (*ReportResult, error) {
	snap, err := h.store.Current()
	if err != nil {
		return nil, err
	}
	return BuildReport(snap.Dataset), nil
}

// BuildReport computes enrollment trends and recruits for a dataset.
func BuildReport(ds enrollment.Dataset) *ReportResult {
	res := &ReportResult{
		GeneratedAt: timeutil.FormatDateTimeStr(timeutil.Now()),
		Years:       []string{},
		Trends:      []TrendRowDTO{},
		Recruits:    []RecruitDTO{},
	}

	yearSet := make(map[string]struct{})
	for _, school := range enrollment.SchoolNames(ds) {
		for _, program := range enrollment.ProgramNames(ds, school) {
			rec := ds[school][program]
			row := TrendRowDTO{School: school, Program: program, Counts: make(map[string]int)}
			for _, y := range rec.Years {
				yearSet[y] = struct{}{}
			}
			for _, st := range rec.Students {
				for y, e := range st.History {
					if e.Enrolled() {
						row.Counts[y]++
						yearSet[y] = struct{}{}
					}
				}
			}
			res.Trends = append(res.Trends, row)
		}
	}

	for y := range yearSet {
		res.Years = append(res.Years, y)
	}
	sort.Strings(res.Years)
	for _, row := range res.Trends {
		for _, y := range res.Years {
			if _, ok := row.Counts[y]; !ok {
				row.Counts[y] = 0
			}
		}
	}
	if len(res.Years) == 0 {
		return res
	}

	res.LatestYear = res.Years[len(res.Years)-1]
	latest := enrollment.YearLabel(res.LatestYear)
	for _, row := range res.Trends {
		for _, st := range ds[row.School][row.Program].Students {
			e, ok := st.Entry(latest)
			if !ok || !e.Enrolled() {
				continue
			}
			if n, ok := e.Grade.Number(); ok && n == recruitGrade {
				res.Recruits = append(res.Recruits, RecruitDTO{
					School:    row.School,
					Program:   row.Program,
					Name:      st.Name,
					StudentID: st.ID,
					Course:    e.Course,
				})
			}
		}
	}

	sort.SliceStable(res.Recruits, func(i, j int) bool {
		a, b := res.Recruits[i], res.Recruits[j]
		if a.School != b.School {
			return a.School < b.School
		}
		if a.Program != b.Program {
			return a.Program < b.Program
		}
		return a.Name < b.Name
	})
	return res
}
