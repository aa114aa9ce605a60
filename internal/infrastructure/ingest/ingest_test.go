package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arts-recruitment/dashboard/internal/domain/enrollment"
	"github.com/arts-recruitment/dashboard/pkg/timeutil"
)

// writeRoster saves rows (nil cells are left empty) as the first sheet of an xlsx file.
func writeRoster(t *testing.T, path string, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// firstYear has a metadata block, a shifted row and a row-level course.
func firstYear() [][]any {
	return [][]any{
		{"Course Title", nil, "Teacher"},
		{"Concert Band", nil, "Mr. Gray"},
		{},
		{"Student ID", "Student Name", "GR", "Course Title"},
		{100234, "Smith, John", 7, nil},
		{100235, "*Doe, Jane", 8, "Jazz Band"},
		{nil, nil, nil, nil},
		{"x", "100236", "Adams, Amy", 6},
		{"12", "Bo", 7},
	}
}

// secondYear has two sections and no course column.
func secondYear() [][]any {
	return [][]any{
		{"Course Title"},
		{"Band 8"},
		{"Student ID", "Student Name", "Grade"},
		{100234, "Smith, John", 8},
		{"Course Title"},
		{"Jazz Band"},
		{"Student ID", "Student Name", "Grade"},
		{"100234.0", "Smith, John", nil},
		{100999, "Zed", nil},
	}
}

func byID(rec enrollment.ProgramRecord) map[string]enrollment.Student {
	out := make(map[string]enrollment.Student, len(rec.Students))
	for _, s := range rec.Students {
		out[s.ID] = s
	}
	return out
}

func TestYearLabel(t *testing.T) {
	assert.Equal(t, "2023-2024", YearLabel("/x/Band/2023-2024.xlsx"))
	assert.Equal(t, "2023-2024", YearLabel("2023-2024 (1).xlsx"))
}

func TestReadHeaderInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-2025.xlsx")
	writeRoster(t, path, firstYear())

	info, err := ReadHeaderInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.HeaderRow)
	assert.Equal(t, "Concert Band", info.CourseTitle)
	assert.Equal(t, "Mr. Gray", info.Teacher)
}

func TestBuildProgram(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "2024-2025.xlsx")
	b := filepath.Join(dir, "2025-2026 (1).xlsx")
	writeRoster(t, a, firstYear())
	writeRoster(t, b, secondYear())

	rec := BuildProgram([]string{b, a}, nil)

	assert.Equal(t, []string{"2024-2025", "2025-2026"}, rec.Years)

	names := make([]string, 0, len(rec.Students))
	for _, s := range rec.Students {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Adams, Amy", "*Doe, Jane", "Smith, John", "Zed"}, names)

	students := byID(rec)
	require.Len(t, students, 4)

	smith := students["100234"]
	assert.Equal(t, 2, smith.YearsEnrolled)
	assert.Equal(t, "7", smith.History["2024-2025"].Grade.Raw())
	assert.Equal(t, "Concert Band", smith.History["2024-2025"].Course)
	assert.Equal(t, "8", smith.History["2025-2026"].Grade.Raw(), "N/A never replaces a real grade")
	assert.Equal(t, "Band 8, Jazz Band", smith.History["2025-2026"].Course)

	doe := students["100235"]
	assert.Equal(t, "Jazz Band", doe.History["2024-2025"].Course)
	assert.Equal(t, enrollment.AbsentEntry(), doe.History["2025-2026"])
	assert.Equal(t, 1, doe.YearsEnrolled)

	adams := students["100236"]
	assert.Equal(t, "Adams, Amy", adams.Name, "shifted row read one column right")
	assert.Equal(t, "6", adams.History["2024-2025"].Grade.Raw())

	zed := students["100999"]
	assert.Equal(t, enrollment.GradeNotApplicable, zed.History["2025-2026"].Grade.Raw())
	assert.Equal(t, "Jazz Band", zed.History["2025-2026"].Course)
	assert.Equal(t, 1, zed.YearsEnrolled)

	assert.NotContains(t, students, "12")
}

func TestBuildProgram_UnreadableFileKeepsYear(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "2024-2025.xlsx")
	bad := filepath.Join(dir, "2025-2026.xlsx")
	writeRoster(t, good, firstYear())
	require.NoError(t, os.WriteFile(bad, []byte("not a workbook"), 0o644))

	rec := BuildProgram([]string{good, bad}, nil)
	assert.Equal(t, []string{"2024-2025", "2025-2026"}, rec.Years)
	assert.Len(t, rec.Students, 3)
}

func TestGenerator_Build(t *testing.T) {
	root := t.TempDir()

	writeRoster(t, filepath.Join(root, "Pine Ridge Middle School", "Band", "2024-2025.xlsx"), firstYear())
	writeRoster(t, filepath.Join(root, "Pine Ridge Middle School", "Orchestra", "2024-2025.xlsx"), firstYear())

	// March: the Gray file sits in the Choir folder but belongs to Band.
	writeRoster(t, filepath.Join(root, "March Middle School", "Choir", "2024-2025.xlsx"), firstYear())
	writeRoster(t, filepath.Join(root, "March Middle School", "Dance", "2025-2026.xlsx"), secondYear())

	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Flat School"), 0o755))

	restore := timeutil.Clock
	timeutil.Clock = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }
	defer func() { timeutil.Clock = restore }()

	doc, err := NewGenerator(DefaultConfig(root), nil).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-09-01 10:00:00", doc.Metadata.GeneratedAt)
	assert.Equal(t, []string{"March Middle School", "Pine Ridge Middle School"}, enrollment.SchoolNames(doc.Schools))
	assert.Equal(t, []string{"Band"}, enrollment.ProgramNames(doc.Schools, "Pine Ridge Middle School"))
	assert.Equal(t, []string{"Band", "Dance"}, enrollment.ProgramNames(doc.Schools, "March Middle School"))
}

func TestGenerator_WriteFile(t *testing.T) {
	root := t.TempDir()
	writeRoster(t, filepath.Join(root, "Lakeside Middle School", "Band", "2025-2026.xlsx"), secondYear())

	out := filepath.Join(t.TempDir(), "dashboard_data.json")
	_, err := NewGenerator(DefaultConfig(root), nil).WriteFile(context.Background(), out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	rec, ok := doc.Schools.Program(enrollment.LakesideSchool, "Band")
	require.True(t, ok)
	assert.Len(t, rec.Students, 2)
	assert.NotEmpty(t, doc.Metadata.GeneratedAt)
}

func TestBucketFor(t *testing.T) {
	g := NewGenerator(DefaultConfig(""), nil)

	assert.Equal(t, "Band", g.bucketFor("Mr. Gray", "Theatre"))
	assert.Equal(t, "Choir", g.bucketFor("Ms. Mosley", "Band"))
	assert.Equal(t, "Dance", g.bucketFor("Pelagio", "Band"))
	assert.Equal(t, "Choir", g.bucketFor("Unknown", "Choir"))
	assert.Equal(t, "Theatre", g.bucketFor("Unknown", "Theatre"))
}
