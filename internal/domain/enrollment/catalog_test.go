package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDataset() Dataset {
	return Dataset{
		"Pine Ridge Middle School": School{
			"Theatre": ProgramRecord{Years: []string{"2024-2025"}},
			"Choir":   ProgramRecord{Years: []string{"2023-2024", "2024-2025"}},
		},
		LakesideSchool: School{
			"Dance": ProgramRecord{},
			"Band":  ProgramRecord{Years: []string{"2023-2024", "2024-2025", "2025-2026"}},
			"Choir": ProgramRecord{},
		},
		"Empty Middle School": School{},
	}
}

func TestSchoolNames_Sorted(t *testing.T) {
	assert.Equal(t,
		[]string{"Empty Middle School", LakesideSchool, "Pine Ridge Middle School"},
		SchoolNames(sampleDataset()))
	assert.Empty(t, SchoolNames(Dataset{}))
}

func TestProgramNames(t *testing.T) {
	ds := sampleDataset()
	assert.Equal(t, []string{"Band", "Choir", "Dance"}, ProgramNames(ds, LakesideSchool))
	assert.Nil(t, ProgramNames(ds, "Nowhere"))
}

func TestDefaultProgram(t *testing.T) {
	ds := sampleDataset()

	p, ok := DefaultProgram(ds, LakesideSchool)
	assert.True(t, ok)
	assert.Equal(t, "Band", p)

	p, ok = DefaultProgram(ds, "Pine Ridge Middle School")
	assert.True(t, ok)
	assert.Equal(t, "Choir", p, "first alphabetically without Band")

	_, ok = DefaultProgram(ds, "Empty Middle School")
	assert.False(t, ok)

	_, ok = DefaultProgram(ds, "Nowhere")
	assert.False(t, ok)
}

func TestLatestYear(t *testing.T) {
	y, ok := LatestYear(sampleDataset())
	assert.True(t, ok)
	assert.Equal(t, "2025-2026", y)

	_, ok = LatestYear(Dataset{})
	assert.False(t, ok)
}

func TestYearLabel_Previous(t *testing.T) {
	prev, ok := YearLabel("2025-2026").Previous(1)
	assert.True(t, ok)
	assert.Equal(t, YearLabel("2024-2025"), prev)

	prev, ok = YearLabel("2025-2026").Previous(2)
	assert.True(t, ok)
	assert.Equal(t, YearLabel("2023-2024"), prev)

	_, ok = YearLabel("Fall 2025").Previous(1)
	assert.False(t, ok)
	assert.False(t, YearLabel("2025").Valid())
}
