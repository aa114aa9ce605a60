package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

func TestReport(t *testing.T) {
	restore := timeutil.Clock
	timeutil.Clock = func() time.Time { return time.Date(2025, 10, 1, 8, 30, 0, 0, time.UTC) }
	defer func() { timeutil.Clock = restore }()

	snap := testSnapshot()
	snap.Dataset["Pine Ridge Middle School"]["Choir"] = enrollment.ProgramRecord{
		Years: []string{"2025-2026"},
		Students: []enrollment.Student{
			{ID: "C1", Name: "Zoe", History: map[string]enrollment.YearEntry{"2025-2026": entry("8", "Choir 8")}},
			{ID: "C2", Name: "Abe", History: map[string]enrollment.YearEntry{"2025-2026": entry("8", "Choir 8")}},
			{ID: "C3", Name: "Dropped", History: map[string]enrollment.YearEntry{"2025-2026": entry("8", enrollment.CourseNoEnrollment)}},
		},
	}

	res, err := NewReportHandler(&fakeStore{snap: snap}).Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-10-01 08:30:00", res.GeneratedAt)
	assert.Equal(t, threeYears, res.Years)
	assert.Equal(t, "2025-2026", res.LatestYear)

	require.Len(t, res.Trends, 3)
	assert.Equal(t, TrendRowDTO{
		School:  enrollment.LakesideSchool,
		Program: "Band",
		Counts:  map[string]int{"2023-2024": 1, "2024-2025": 2, "2025-2026": 3},
	}, res.Trends[0])
	assert.Equal(t, 2, res.Trends[1].Counts["2025-2026"])
	assert.Equal(t, 0, res.Trends[2].Counts["2025-2026"])

	var got []string
	for _, r := range res.Recruits {
		got = append(got, r.School+"/"+r.Program+"/"+r.Name)
	}
	assert.Equal(t, []string{
		enrollment.LakesideSchool + "/Band/Alex Nerd",
		enrollment.LakesideSchool + "/Band/Jane Doe",
		"Pine Ridge Middle School/Choir/Abe",
		"Pine Ridge Middle School/Choir/Zoe",
	}, got)
}

func TestReport_EmptyDataset(t *testing.T) {
	res := BuildReport(enrollment.Dataset{})
	assert.Empty(t, res.Years)
	assert.Empty(t, res.LatestYear)
	assert.NotNil(t, res.Recruits)
}
