package enrollment

// ══════════════════════════════════════════════════════════════════════════════
// DATASET
// ══════════════════════════════════════════════════════════════════════════════

// Dataset maps school name to its programs. Immutable once loaded.
type Dataset map[string]School

// School maps program name to its record.
type School map[string]ProgramRecord

// ProgramRecord holds the years covered by a program and its students.
type ProgramRecord struct {
	// Years - ordered year labels; defines column order when rendering.
	Years []string `json:"years"`

	// Students - roster in generator order (sorted by name).
	Students []Student `json:"students"`
}

// Program returns the record for (school, program).
func (d Dataset) Program(school, program string) (ProgramRecord, bool) {
	s, ok := d[school]
	if !ok {
		return ProgramRecord{}, false
	}
	p, ok := s[program]
	return p, ok
}

// HasSchool reports whether the school exists.
func (d Dataset) HasSchool(school string) bool {
	_, ok := d[school]
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is one roster entry.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// YearsEnrolled is informational; the classifier never reads it.
	YearsEnrolled int `json:"years_enrolled"`

	// History maps year label to the entry for that year.
	History map[string]YearEntry `json:"history"`
}

// Entry returns the entry for a year. A missing entry is reported as absent,
// which is the same as "No Enrollment".
func (s Student) Entry(year YearLabel) (YearEntry, bool) {
	e, ok := s.History[string(year)]
	return e, ok
}

// EnrolledGrades returns the set of numeric grades with a real enrollment.
func (s Student) EnrolledGrades() map[int]bool {
	grades := make(map[int]bool)
	for _, e := range s.History {
		if !e.Enrolled() {
			continue
		}
		if n, ok := e.Grade.Number(); ok {
			grades[n] = true
		}
	}
	return grades
}

// ══════════════════════════════════════════════════════════════════════════════
// YEAR ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentStatus tells "no data" apart from "enrolled with a grade".
type EnrollmentStatus int

const (
	// StatusAbsent - no enrollment that year (missing entry, "No Enrollment" or "N/A").
	StatusAbsent EnrollmentStatus = iota
	// StatusEnrolled - enrolled with a recorded grade.
	StatusEnrolled
)

// String returns the status name.
func (s EnrollmentStatus) String() string {
	if s == StatusEnrolled {
		return "enrolled"
	}
	return "absent"
}

// YearEntry is a student's record for one year.
type YearEntry struct {
	Grade  Grade  `json:"grade"`
	Course string `json:"course"`
}

// AbsentEntry returns the entry used to fill a year without enrollment.
func AbsentEntry() YearEntry {
	return YearEntry{Grade: NotApplicableGrade(), Course: CourseNoEnrollment}
}

// Status classifies the entry.
func (e YearEntry) Status() EnrollmentStatus {
	if !e.Grade.Applicable() || e.Course == CourseNoEnrollment {
		return StatusAbsent
	}
	return StatusEnrolled
}

// Enrolled reports whether the entry is a real enrollment.
func (e YearEntry) Enrolled() bool {
	return e.Status() == StatusEnrolled
}
