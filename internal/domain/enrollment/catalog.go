package enrollment

import "sort"

// DefaultProgramName is preferred when a school offers it.
const DefaultProgramName = "Band"

// SchoolNames returns school names sorted alphabetically.
func SchoolNames(ds Dataset) []string {
	names := make([]string, 0, len(ds))
	for name := range ds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProgramNames returns the school's program names sorted alphabetically,
// or nil for an unknown school.
func ProgramNames(ds Dataset, school string) []string {
	s, ok := ds[school]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProgram returns "Band" if the school has it, else the first program
// alphabetically. Reports false for unknown schools or schools without programs.
func DefaultProgram(ds Dataset, school string) (string, bool) {
	programs := ProgramNames(ds, school)
	if len(programs) == 0 {
		return "", false
	}
	for _, p := range programs {
		if p == DefaultProgramName {
			return p, true
		}
	}
	return programs[0], true
}

// LatestYear returns the greatest year label used by any program.
func LatestYear(ds Dataset) (string, bool) {
	latest := ""
	for _, school := range ds {
		for _, program := range school {
			for _, y := range program.Years {
				if y > latest {
					latest = y
				}
			}
		}
	}
	return latest, latest != ""
}
