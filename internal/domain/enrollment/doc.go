// Package enrollment содержит доменную модель дашборда набора в творческие программы.
//
// The package defines:
//
//   - Entities: Dataset, School, ProgramRecord, Student, YearEntry
//   - Value objects: Grade, YearLabel, Classification, Color, ClassificationFilter
//   - The Classifier and its per-school RuleSet strategies
//   - The row visibility predicate used by search and filter chips
//   - Dashboard State, an immutable selection snapshot
//   - Ports implemented in infrastructure: Source, SnapshotStore, RosterCache
//
// # Classification
//
// A student is classified only while their projected current grade is inside the
// middle-school band (6..8):
//
//	classifier := NewClassifier("2025-2026", LakesideSchool)
//	c, ok := classifier.Classify(student, "Lakeside Middle School", "Band")
//	if ok {
//	    fmt.Println(c.Label, c.Color) // "hardcore band nerd" green
//	}
//
// The rule set is chosen by school name. Unknown schools use StandardRules;
// the strict schools passed to NewClassifier use LakesideRules, and Register
// can install any other strategy.
//
// # Visibility
//
//	visible := IsVisible(Row{Name: "John Smith", ID: "S001"}, "smi", FilterNone)
//
// Nothing in this package performs I/O.
package enrollment
