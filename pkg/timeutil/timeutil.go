// Package timeutil provides time helpers for academic-year bookkeeping.
package timeutil

import (
	"fmt"
	"time"
)

// DateTimeLayout is the layout used for dataset generation timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// DefaultRolloverMonth is the month in which a new academic year starts.
const DefaultRolloverMonth = time.August

// Clock returns the current time. Replaced in tests.
var Clock = time.Now

// Now returns the current local time.
func Now() time.Time {
	return Clock()
}

// AcademicYear returns the academic year label ("2025-2026") containing t.
// Dates on or after the rollover month belong to the year starting that
// calendar year; earlier dates belong to the year that started the year before.
func AcademicYear(t time.Time, rollover time.Month) string {
	if rollover < time.January || rollover > time.December {
		rollover = DefaultRolloverMonth
	}
	start := t.Year()
	if t.Month() < rollover {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// CurrentAcademicYear returns the academic year for Now().
func CurrentAcademicYear(rollover time.Month) string {
	return AcademicYear(Now(), rollover)
}

// FormatDateTimeStr formats t as "2006-01-02 15:04:05".
func FormatDateTimeStr(t time.Time) string {
	return t.Format(DateTimeLayout)
}
