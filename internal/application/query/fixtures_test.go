package query

import (
	"context"
	"sync"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

type fakeStore struct {
	snap *enrollment.Snapshot
	err  error
}

func (s *fakeStore) Current() (*enrollment.Snapshot, error) {
	if s.snap == nil {
		if s.err != nil {
			return nil, shared.WrapError("dataset", "Load", shared.ErrServiceUnavailable, "dataset is not loaded", s.err)
		}
		return nil, shared.ErrDatasetUnavailable
	}
	return s.snap, nil
}
func (s *fakeStore) Replace(snap *enrollment.Snapshot) { s.snap = snap }
func (s *fakeStore) Fail(err error)                    { s.err = err }

type fakeCache struct {
	mu     sync.Mutex
	data   map[enrollment.RosterKey][]enrollment.ClassifiedStudent
	gets   int
	sets   int
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[enrollment.RosterKey][]enrollment.ClassifiedStudent{}}
}

func (c *fakeCache) Get(_ context.Context, key enrollment.RosterKey) ([]enrollment.ClassifiedStudent, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key enrollment.RosterKey, students []enrollment.ClassifiedStudent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = students
	return nil
}

func entry(grade, course string) enrollment.YearEntry {
	return enrollment.YearEntry{Grade: enrollment.NewGrade(grade), Course: course}
}

var absent = enrollment.AbsentEntry()

var threeYears = []string{"2023-2024", "2024-2025", "2025-2026"}

// testSnapshot has one Lakeside Band roster covering each label, plus a
// second school with two programs.
func testSnapshot() *enrollment.Snapshot {
	ds := enrollment.Dataset{
		enrollment.LakesideSchool: enrollment.School{
			"Band": enrollment.ProgramRecord{
				Years: threeYears,
				Students: []enrollment.Student{
					{ID: "A100", Name: "Alex Nerd", YearsEnrolled: 2, History: map[string]enrollment.YearEntry{
						"2023-2024": absent, "2024-2025": entry("7", "Band 7"), "2025-2026": entry("8", "Band 8"),
					}},
					{ID: "D002", Name: "Jane Doe", YearsEnrolled: 1, History: map[string]enrollment.YearEntry{
						"2023-2024": absent, "2024-2025": absent, "2025-2026": entry("8", "Jazz Band"),
					}},
					{ID: "S001", Name: "John Smith", YearsEnrolled: 2, History: map[string]enrollment.YearEntry{
						"2023-2024": entry("6", "Band 6"), "2024-2025": entry("7", "Band 7"), "2025-2026": absent,
					}},
					{ID: "Y900", Name: "Young One", YearsEnrolled: 1, History: map[string]enrollment.YearEntry{
						"2023-2024": absent, "2024-2025": absent, "2025-2026": entry("6", "Band 6"),
					}},
				},
			},
		},
		"Pine Ridge Middle School": enrollment.School{
			"Choir":   enrollment.ProgramRecord{Years: []string{"2025-2026"}},
			"Theatre": enrollment.ProgramRecord{Years: []string{"2025-2026"}},
		},
	}
	return &enrollment.Snapshot{
		Dataset:     ds,
		Metadata:    enrollment.Metadata{GeneratedAt: "2025-09-01 10:00:00"},
		Fingerprint: "fp1",
	}
}

func newRosters(cache enrollment.RosterCache) *RosterService {
	return NewRosterService(enrollment.NewClassifier(enrollment.DefaultCurrentYear, enrollment.LakesideSchool), cache, nil)
}
