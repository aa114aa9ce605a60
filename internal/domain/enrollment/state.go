package enrollment

// State is an immutable snapshot of the dashboard selection. Transitions
// return a new State and never touch the receiver.
type State struct {
	School  string               `json:"school"`
	Program string               `json:"program"`
	Filter  ClassificationFilter `json:"filter"`
	Search  string               `json:"search"`
}

// InitialState selects the first school alphabetically and its default program.
// An empty dataset gives the zero State.
func InitialState(ds Dataset) State {
	schools := SchoolNames(ds)
	if len(schools) == 0 {
		return State{}
	}
	return State{}.SelectSchool(ds, schools[0])
}

// SelectSchool switches school and resets the program to the school's default.
// Unknown or empty names leave the state unchanged.
func (s State) SelectSchool(ds Dataset, school string) State {
	if school == "" || !ds.HasSchool(school) {
		return s
	}
	next := s
	next.School = school
	next.Program, _ = DefaultProgram(ds, school)
	return next
}

// SwitchProgram changes the program within the current school.
// Unknown programs leave the state unchanged.
func (s State) SwitchProgram(ds Dataset, program string) State {
	if _, ok := ds.Program(s.School, program); !ok {
		return s
	}
	next := s
	next.Program = program
	return next
}

// WithFilter sets the classification filter. The search text is kept so it
// is re-applied over the newly filtered rows.
func (s State) WithFilter(f ClassificationFilter) State {
	next := s
	next.Filter = f
	return next
}

// WithSearch sets the search text.
func (s State) WithSearch(text string) State {
	next := s
	next.Search = text
	return next
}

// HasSelection reports whether a school and program are selected.
func (s State) HasSelection() bool {
	return s.School != "" && s.Program != ""
}
