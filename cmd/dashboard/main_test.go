package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/application/query"
)

const cliDataset = `{
  "metadata": {"generated_at": "2025-09-01 10:00:00"},
  "schools": {
    "Lakeside Middle School": {
      "Band": {
        "years": ["2023-2024", "2024-2025", "2025-2026"],
        "students": [
          {"id": "A100", "name": "Alex Nerd", "years_enrolled": 2, "history": {
            "2023-2024": {"grade": "N/A", "course": "No Enrollment"},
            "2024-2025": {"grade": "7", "course": "Band 7"},
            "2025-2026": {"grade": "8", "course": "Band 8"}}},
          {"id": "D002", "name": "Jane Doe", "years_enrolled": 1, "history": {
            "2025-2026": {"grade": 8, "course": "Jazz Band"}}},
          {"id": "S001", "name": "John Smith", "years_enrolled": 2, "history": {
            "2023-2024": {"grade": "6", "course": "Band 6"},
            "2024-2025": {"grade": "7", "course": "Band 7"},
            "2025-2026": {"grade": "N/A", "course": "No Enrollment"}}}
        ]
      },
      "Choir": {"years": ["2025-2026"], "students": []}
    },
    "Pine Ridge Middle School": {
      "Theatre": {"years": ["2025-2026"], "students": []}
    }
  }
}`

// setupCLI writes the dataset and pins the environment the commands read.
func setupCLI(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dashboard_data.json")
	require.NoError(t, os.WriteFile(path, []byte(cliDataset), 0o644))

	t.Setenv("DATA_SOURCE", path)
	t.Setenv("DATA_CURRENT_YEAR", "2025-2026")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("HTTP_STATIC_DIR", "")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_DefaultSelection(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "classify")
	require.NoError(t, err)

	assert.Contains(t, out, "Lakeside Middle School / Band (current year 2025-2026)")
	assert.Contains(t, out, "hardcore band nerd")
	assert.Contains(t, out, "late starter")
	assert.Contains(t, out, "withdrew")
	assert.Contains(t, out, "3 of 3 shown | nerd 1 | late 1 | withdrew 1 | unclassified 0")
}

func TestClassify_StrictSchoolsExcludeLakeside(t *testing.T) {
	setupCLI(t)
	t.Setenv("DATA_STRICT_SCHOOLS", "Pine Ridge Middle School")

	out, err := run(t, "classify", "--school", "Lakeside Middle School", "--program", "Band")
	require.NoError(t, err)

	// Grades 7 and 8 without 6 only make a nerd under the strict rules.
	assert.NotContains(t, out, "hardcore band nerd")
	assert.Contains(t, out, "3 of 3 shown | nerd 0 | late 2 | withdrew 1 | unclassified 0")
}

func TestClassify_FilterAndSearch(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "classify", "--school", "Lakeside Middle School", "--program", "Band", "--filter", "withdrew", "-q", "smi")
	require.NoError(t, err)
	assert.Contains(t, out, "John Smith")
	assert.NotContains(t, out, "Alex Nerd")
	assert.Contains(t, out, "1 of 3 shown")
}

func TestClassify_JSON(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "classify", "--json", "--program", "Choir")
	require.NoError(t, err)

	var res query.GetDashboardResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Lakeside Middle School", res.State.School)
	assert.Equal(t, "Choir", res.State.Program)
	require.NotNil(t, res.Roster)
	assert.Zero(t, res.Roster.Total)
}

func TestClassify_EmptySchool(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "classify", "--school", "Pine Ridge Middle School", "--program", "Theatre")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 shown")
}

func TestClassify_Errors(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "classify", "--filter", "dropouts")
	assert.Error(t, err)

	_, err = run(t, "classify", "--data", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "load dataset")
}

func TestReport_Text(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Enrollment trends")
	assert.Contains(t, out, "Potential recruits (grade 8 in 2025-2026): 2")
	assert.Contains(t, out, "Jazz Band")
}

func TestReport_JSON(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "report", "--json")
	require.NoError(t, err)

	var res query.ReportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"2023-2024", "2024-2025", "2025-2026"}, res.Years)
	assert.Equal(t, "2025-2026", res.LatestYear)
	assert.Len(t, res.Recruits, 2)
}

func TestReport_DisabledFeature(t *testing.T) {
	setupCLI(t)
	t.Setenv("FEATURE_RECRUITMENT_REPORT", "false")

	_, err := run(t, "report")
	assert.ErrorContains(t, err, "recruitment_report")
}

func TestGenerate_EmptyTree(t *testing.T) {
	setupCLI(t)
	root := t.TempDir()
	output := filepath.Join(t.TempDir(), "out.json")

	out, err := run(t, "generate", "--root", root, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "0 schools")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		Metadata map[string]string         `json:"metadata"`
		Schools  map[string]json.RawMessage `json:"schools"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc.Metadata["generated_at"])
	assert.Empty(t, doc.Schools)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "generate", "classify", "report"} {
		assert.True(t, names[want], want)
	}
}
