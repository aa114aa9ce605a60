package enrollment

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCurrentYear is the year label treated as "now" by this dataset generation.
const DefaultCurrentYear YearLabel = "2025-2026"

// YearLabel identifies an academic year, e.g. "2024-2025". Labels sort as strings.
type YearLabel string

// String returns the label text.
func (y YearLabel) String() string {
	return string(y)
}

// bounds parses "YYYY-YYYY".
func (y YearLabel) bounds() (int, int, bool) {
	start, end, found := strings.Cut(string(y), "-")
	if !found {
		return 0, 0, false
	}
	a, err := strconv.Atoi(start)
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(end)
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// Previous returns the label n years earlier: "2025-2026".Previous(1) is "2024-2025".
// Labels that are not of the form YYYY-YYYY have no predecessor.
func (y YearLabel) Previous(n int) (YearLabel, bool) {
	a, b, ok := y.bounds()
	if !ok {
		return "", false
	}
	return YearLabel(fmt.Sprintf("%d-%d", a-n, b-n)), true
}

// Valid reports whether the label has the YYYY-YYYY shape.
func (y YearLabel) Valid() bool {
	_, _, ok := y.bounds()
	return ok
}
