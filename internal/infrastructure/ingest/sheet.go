package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds the metadata scan at the top of a sheet.
const headerScanRows = 20

// sheet is the first worksheet of a workbook as a rectangular grid of
// trimmed cell text. Missing cells read as "".
type sheet struct {
	rows  [][]string
	width int
}

// readSheet loads the first worksheet of an xlsx file.
func readSheet(path string) (*sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(names[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", names[0], err)
	}

	s := &sheet{rows: rows}
	for i, row := range rows {
		if len(row) > s.width {
			s.width = len(row)
		}
		for j := range row {
			rows[i][j] = strings.TrimSpace(row[j])
		}
	}
	return s, nil
}

func (s *sheet) cell(row, col int) string {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return ""
	}
	return s.rows[row][col]
}

// hasValue reports whether any cell in the row equals v exactly.
func (s *sheet) hasValue(row int, v string) bool {
	for _, c := range s.rows[row] {
		if c == v {
			return true
		}
	}
	return false
}

// HeaderInfo is the metadata found above the roster table.
type HeaderInfo struct {
	// HeaderRow is the index of the row holding the "Student ID" label.
	HeaderRow   int
	CourseTitle string
	Teacher     string
}

// headerInfo scans the first rows for the roster header and for cells
// labelled "Course Title" / "Teacher", whose value sits in the row below.
// The last match wins.
func (s *sheet) headerInfo() HeaderInfo {
	info := HeaderInfo{CourseTitle: courseUnknown, Teacher: courseUnknown}
	limit := min(len(s.rows), headerScanRows)

	for r := 0; r < limit; r++ {
		for c, v := range s.rows[r] {
			if strings.ToLower(v) == "student id" {
				info.HeaderRow = r
			}
			if v == "" || r+1 >= limit {
				continue
			}
			below := s.cell(r+1, c)
			if below == "" {
				continue
			}
			if strings.Contains(v, "Course Title") {
				info.CourseTitle = below
			}
			if strings.Contains(v, "Teacher") {
				info.Teacher = below
			}
		}
	}
	return info
}

// ReadHeaderInfo opens a workbook and returns its header metadata.
func ReadHeaderInfo(path string) (HeaderInfo, error) {
	s, err := readSheet(path)
	if err != nil {
		return HeaderInfo{CourseTitle: courseUnknown, Teacher: courseUnknown}, err
	}
	return s.headerInfo(), nil
}
