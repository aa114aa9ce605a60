package enrollment

import "sync"

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Color is the severity tag of a classification.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Valid reports whether c is one of the three known colors.
func (c Color) Valid() bool {
	switch c {
	case ColorGreen, ColorYellow, ColorRed:
		return true
	}
	return false
}

// Labels produced by the rule sets.
const (
	LabelLateStarter = "late starter"
	LabelWithdrew    = "withdrew"
)

// LakesideSchool is the school that uses LakesideRules by default.
const LakesideSchool = "Lakeside Middle School"

// Classification is a derived engagement label. Never stored.
type Classification struct {
	Label string `json:"label"`
	Color Color  `json:"color"`
}

// NerdLabel returns the "hardcore ... nerd" label for a program.
// Programs other than Choir, Dance and Theatre get the band label.
func NerdLabel(program string) string {
	switch program {
	case "Choir":
		return "hardcore choir nerd"
	case "Dance":
		return "hardcore dance nerd"
	case "Theatre":
		return "hardcore theatre nerd"
	default:
		return "hardcore band nerd"
	}
}

// Participation summarises the history facts the rule sets look at.
type Participation struct {
	Has6            bool
	Has7            bool
	Has8            bool
	CurrentlyActive bool
}

// ══════════════════════════════════════════════════════════════════════════════
// RULE SETS
// ══════════════════════════════════════════════════════════════════════════════

// RuleSet chooses a classification from participation facts. Rules are checked
// top to bottom; the first match wins.
type RuleSet interface {
	Name() string
	Apply(p Participation, nerdLabel string) (Classification, bool)
}

// LakesideRules: two years (7 and 8) make a nerd, and late starters must
// have joined in grade 8 only.
type LakesideRules struct{}

func (LakesideRules) Name() string { return "lakeside" }

func (LakesideRules) Apply(p Participation, nerdLabel string) (Classification, bool) {
	switch {
	case p.Has7 && p.Has8:
		return Classification{Label: nerdLabel, Color: ColorGreen}, true
	case p.Has8 && !p.Has7 && !p.Has6:
		return Classification{Label: LabelLateStarter, Color: ColorYellow}, true
	case withdrew(p):
		return Classification{Label: LabelWithdrew, Color: ColorRed}, true
	}
	return Classification{}, false
}

// StandardRules: all three grades make a nerd; any grade-8 enrollment
// otherwise counts as a late start.
type StandardRules struct{}

func (StandardRules) Name() string { return "standard" }

func (StandardRules) Apply(p Participation, nerdLabel string) (Classification, bool) {
	switch {
	case p.Has6 && p.Has7 && p.Has8:
		return Classification{Label: nerdLabel, Color: ColorGreen}, true
	case p.Has8:
		return Classification{Label: LabelLateStarter, Color: ColorYellow}, true
	case withdrew(p):
		return Classification{Label: LabelWithdrew, Color: ColorRed}, true
	}
	return Classification{}, false
}

func withdrew(p Participation) bool {
	return !p.CurrentlyActive && (p.Has6 || p.Has7) && !p.Has8
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Classifier derives classifications relative to a fixed current year.
// Safe for concurrent use.
type Classifier struct {
	currentYear YearLabel
	fallback    RuleSet

	mu    sync.RWMutex
	rules map[string]RuleSet
}

// NewClassifier creates a classifier that applies LakesideRules to the
// listed strict schools and StandardRules to every other school. Callers
// usually pass config's DATA_STRICT_SCHOOLS, which defaults to LakesideSchool.
func NewClassifier(currentYear YearLabel, strictSchools ...string) *Classifier {
	c := &Classifier{
		currentYear: currentYear,
		fallback:    StandardRules{},
		rules:       make(map[string]RuleSet, len(strictSchools)),
	}
	for _, school := range strictSchools {
		c.Register(school, LakesideRules{})
	}
	return c
}

// Register selects a rule set for a school.
func (c *Classifier) Register(school string, rules RuleSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[school] = rules
}

// CurrentYear returns the year treated as "now".
func (c *Classifier) CurrentYear() YearLabel {
	return c.currentYear
}

// RulesFor returns the rule set used for a school.
func (c *Classifier) RulesFor(school string) RuleSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if r, ok := c.rules[school]; ok {
		return r
	}
	return c.fallback
}

// ProjectedGrade estimates the student's grade in the current year from the
// current year, or the previous year plus one, or two years back plus two.
func (c *Classifier) ProjectedGrade(s Student) (int, bool) {
	for back := 0; back <= 2; back++ {
		year := c.currentYear
		if back > 0 {
			prev, ok := c.currentYear.Previous(back)
			if !ok {
				return 0, false
			}
			year = prev
		}
		e, ok := s.Entry(year)
		if !ok {
			continue
		}
		if n, ok := e.Grade.Number(); ok {
			return n + back, true
		}
	}
	return 0, false
}

// Participation computes the facts used by the rule sets.
func (c *Classifier) Participation(s Student) Participation {
	grades := s.EnrolledGrades()
	p := Participation{
		Has6: grades[6],
		Has7: grades[7],
		Has8: grades[8],
	}
	if e, ok := s.Entry(c.currentYear); ok {
		p.CurrentlyActive = e.Course != CourseNoEnrollment && (e.Grade.Is("6") || e.Grade.Is("7"))
	}
	return p
}

// Classify returns the student's classification in the given school and
// program, or false when the student is outside the tracked grade band or no
// rule matches.
func (c *Classifier) Classify(s Student, school, program string) (Classification, bool) {
	grade, ok := c.ProjectedGrade(s)
	if !ok || grade < MinTrackedGrade || grade > MaxTrackedGrade {
		return Classification{}, false
	}
	return c.RulesFor(school).Apply(c.Participation(s), NerdLabel(program))
}
