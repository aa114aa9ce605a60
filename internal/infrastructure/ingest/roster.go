package ingest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

const (
	courseUnknown = enrollment.CourseUnknown
	nameUnknown   = "Unknown"
)

// columns maps roster fields to sheet columns. -1 means absent.
type columns struct {
	id, name, grade, course int
}

func noColumns() columns {
	return columns{id: -1, name: -1, grade: -1, course: -1}
}

// parseColumns reads a "Student ID" header row.
func parseColumns(row []string) columns {
	cols := noColumns()
	for i, raw := range row {
		v := strings.ToLower(raw)
		if strings.Contains(v, "student id") {
			cols.id = i
		}
		if strings.Contains(v, "student name") {
			cols.name = i
		}
		if v == "gr" || strings.Contains(v, "grade") {
			cols.grade = i
		}
		if strings.Contains(v, "course title") {
			cols.course = i
		}
	}
	return cols
}

// resolve returns the columns to read for one data row. Some exports shift a
// row one cell to the right, leaving a short stub under "Student ID"; such
// rows are read with every mapped column moved right by one.
func (c columns) resolve(s *sheet, row int) columns {
	shift := 0
	idVal := strings.ToLower(s.cell(row, c.id))
	if len(idVal) <= 2 && c.id+1 < s.width && len(s.cell(row, c.id+1)) > 5 {
		shift = 1
	}

	out := columns{id: c.id + shift, course: -1}
	if c.name >= 0 {
		out.name = c.name + shift
	} else {
		out.name = out.id + 1
	}
	if c.grade >= 0 {
		out.grade = c.grade + shift
	} else {
		out.grade = out.name + 1
	}
	if c.course >= 0 {
		out.course = c.course + shift
	}
	return out
}

// yearRecord accumulates one student's enrollments within a year.
type yearRecord struct {
	grade   string
	courses map[string]struct{}
}

type studentRecord struct {
	id    string
	name  string
	years map[string]*yearRecord
}

// rosterBuilder merges rows from several yearly files of one program.
type rosterBuilder struct {
	log      *logger.Logger
	order    []string
	students map[string]*studentRecord
	years    map[string]struct{}
}

func newRosterBuilder(log *logger.Logger) *rosterBuilder {
	return &rosterBuilder{
		log:      log,
		students: make(map[string]*studentRecord),
		years:    make(map[string]struct{}),
	}
}

// YearLabel derives the year label from a roster file name:
// "2023-2024 (1).xlsx" gives "2023-2024".
func YearLabel(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	label, _, _ := strings.Cut(base, " ")
	return label
}

// addFile reads one yearly roster. The year is registered even when the file
// cannot be read, so it still appears as a column.
func (b *rosterBuilder) addFile(path string) {
	year := YearLabel(path)
	b.years[year] = struct{}{}

	s, err := readSheet(path)
	if err != nil {
		b.log.Warn("skipping unreadable roster",
			logger.String("file", path),
			logger.Err(err),
		)
		return
	}

	info := s.headerInfo()
	currentCourse := info.CourseTitle
	cols := noColumns()
	valueRow := -1

	for r := range s.rows {
		if s.hasValue(r, "Student ID") {
			cols = parseColumns(s.rows[r])
			continue
		}

		// A "Course Title" label starts a new section; its value sits below.
		// Neither row is roster data.
		if s.hasValue(r, "Course Title") {
			for c, v := range s.rows[r] {
				if v != "Course Title" {
					continue
				}
				if title := s.cell(r+1, c); title != "" && strings.ToLower(title) != "nan" {
					currentCourse = title
				}
			}
			valueRow = r + 1
			continue
		}
		if s.hasValue(r, "Teacher") {
			valueRow = r + 1
			continue
		}
		if r == valueRow || cols.id < 0 {
			continue
		}

		b.addRow(year, s, r, cols.resolve(s, r), currentCourse)
	}
}

func (b *rosterBuilder) addRow(year string, s *sheet, r int, rc columns, sectionCourse string) {
	id := s.cell(r, rc.id)
	if id == "" {
		return
	}
	id = strings.TrimSuffix(id, ".0")
	if len(id) <= 2 {
		return
	}

	name := nameUnknown
	if rc.name < s.width {
		if v := s.cell(r, rc.name); v != "" {
			name = v
		}
	}

	grade := enrollment.GradeNotApplicable
	if rc.grade < s.width {
		if v := s.cell(r, rc.grade); v != "" {
			grade = v
		}
	}

	course := courseUnknown
	if rc.course >= 0 && rc.course < s.width {
		if v := s.cell(r, rc.course); v != "" {
			course = v
		}
	}
	if strings.EqualFold(course, courseUnknown) {
		course = sectionCourse
	}

	st, ok := b.students[id]
	if !ok {
		st = &studentRecord{id: id, name: name, years: make(map[string]*yearRecord)}
		b.students[id] = st
		b.order = append(b.order, id)
	}
	if st.name == nameUnknown && name != nameUnknown {
		st.name = name
	}

	yr, ok := st.years[year]
	if !ok {
		yr = &yearRecord{grade: grade, courses: make(map[string]struct{})}
		st.years[year] = yr
	} else if yr.grade == enrollment.GradeNotApplicable && grade != enrollment.GradeNotApplicable {
		yr.grade = grade
	}
	if course != courseUnknown {
		yr.courses[course] = struct{}{}
	}
}

// build fills missing years with absent entries and sorts students by name,
// ignoring leading "*-_ " decoration and case.
func (b *rosterBuilder) build() enrollment.ProgramRecord {
	years := make([]string, 0, len(b.years))
	for y := range b.years {
		years = append(years, y)
	}
	sort.Strings(years)

	students := make([]enrollment.Student, 0, len(b.order))
	for _, id := range b.order {
		rec := b.students[id]
		st := enrollment.Student{
			ID:      rec.id,
			Name:    rec.name,
			History: make(map[string]enrollment.YearEntry, len(years)),
		}
		for _, y := range years {
			yr, ok := rec.years[y]
			if !ok {
				st.History[y] = enrollment.AbsentEntry()
				continue
			}
			st.History[y] = enrollment.YearEntry{
				Grade:  enrollment.NewGrade(yr.grade),
				Course: joinCourses(yr.courses),
			}
			st.YearsEnrolled++
		}
		students = append(students, st)
	}

	sort.SliceStable(students, func(i, j int) bool {
		return sortName(students[i].Name) < sortName(students[j].Name)
	})

	return enrollment.ProgramRecord{Years: years, Students: students}
}

func joinCourses(set map[string]struct{}) string {
	if len(set) == 0 {
		return courseUnknown
	}
	list := make([]string, 0, len(set))
	for c := range set {
		list = append(list, c)
	}
	sort.Strings(list)
	return strings.Join(list, ", ")
}

func sortName(name string) string {
	return strings.ToLower(strings.TrimLeft(name, "*-_ "))
}

// BuildProgram merges yearly roster files into one program record.
func BuildProgram(paths []string, log *logger.Logger) enrollment.ProgramRecord {
	if log == nil {
		log = logger.Nop()
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	b := newRosterBuilder(log)
	for _, p := range sorted {
		log.Debug("reading roster", logger.String("file", p), logger.String("year", YearLabel(p)))
		b.addFile(p)
	}
	return b.build()
}
