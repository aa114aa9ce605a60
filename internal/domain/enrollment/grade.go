package enrollment

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Wire sentinels kept for compatibility with the dataset format.
const (
	// GradeNotApplicable marks a year without a grade.
	GradeNotApplicable = "N/A"

	// CourseNoEnrollment marks a year without enrollment.
	CourseNoEnrollment = "No Enrollment"

	// CourseUnknown is used by the generator when no course title was found.
	CourseUnknown = "Unknown"
)

// Middle-school grade band tracked by the classifier.
const (
	MinTrackedGrade = 6
	MaxTrackedGrade = 8
)

// Grade is the grade recorded for one year. It keeps the raw text because some
// rules compare it literally, and exposes the numeric value as an option.
type Grade struct {
	raw string
}

// NewGrade wraps raw grade text.
func NewGrade(raw string) Grade {
	return Grade{raw: raw}
}

// NotApplicableGrade returns the "N/A" grade.
func NotApplicableGrade() Grade {
	return Grade{raw: GradeNotApplicable}
}

// Raw returns the grade text as stored.
func (g Grade) Raw() string {
	return g.raw
}

// Applicable reports whether a grade was recorded at all.
func (g Grade) Applicable() bool {
	return g.raw != "" && g.raw != GradeNotApplicable
}

// Number returns the numeric grade. Text is read up to the first non-digit
// after optional whitespace and sign, so "7", "07" and "7th" all give 7.
// It reports false for "N/A", empty or non-numeric text.
func (g Grade) Number() (int, bool) {
	if !g.Applicable() {
		return 0, false
	}
	return leadingInt(g.raw)
}

// Is reports whether the raw text is exactly s.
func (g Grade) Is(s string) bool {
	return g.raw == s
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalJSON writes the grade as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.raw)
}

// UnmarshalJSON accepts a string, a number or null.
func (g *Grade) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		g.raw = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		g.raw = s
		return nil
	}
	// Numbers are stored in canonical form: 6.0 reads as "6", 1e1 as "10".
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	g.raw = strconv.FormatFloat(f, 'f', -1, 64)
	return nil
}
