package enrollment

import (
	"fmt"
	"strings"

	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

// ClassificationFilter is the active filter chip.
type ClassificationFilter string

const (
	FilterNone     ClassificationFilter = ""
	FilterNerd     ClassificationFilter = "nerd"
	FilterLate     ClassificationFilter = "late"
	FilterWithdrew ClassificationFilter = "withdrew"
)

// Filters lists the selectable chips in display order.
var Filters = []ClassificationFilter{FilterNerd, FilterLate, FilterWithdrew}

// ParseFilter parses a filter name. "" and "all" mean no filter.
func ParseFilter(s string) (ClassificationFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterNone, nil
	case "nerd":
		return FilterNerd, nil
	case "late":
		return FilterLate, nil
	case "withdrew":
		return FilterWithdrew, nil
	}
	return FilterNone, fmt.Errorf("filter %q: %w", s, shared.ErrInvalidFilter)
}

// Matches reports whether a rendered classification label passes the filter.
// An empty label (unclassified student) only passes FilterNone.
func (f ClassificationFilter) Matches(label string) bool {
	text := strings.ToLower(label)
	switch f {
	case FilterNerd:
		return strings.Contains(text, "hardcore") || strings.Contains(text, "nerd")
	case FilterLate:
		return strings.Contains(text, "late starter")
	case FilterWithdrew:
		return strings.Contains(text, "withdrew")
	default:
		return true
	}
}

// Row is the visible text of a rendered roster row.
type Row struct {
	Name  string
	ID    string
	Label string // rendered classification text, empty when unclassified
}

// MatchesSearch reports whether the row's name or ID contains searchText,
// ignoring case. Empty search text matches every row.
func (r Row) MatchesSearch(searchText string) bool {
	if searchText == "" {
		return true
	}
	needle := strings.ToUpper(searchText)
	return strings.Contains(strings.ToUpper(r.Name), needle) ||
		strings.Contains(strings.ToUpper(r.ID), needle)
}

// IsVisible reports whether a row passes both the search and the classification filter.
func IsVisible(row Row, searchText string, filter ClassificationFilter) bool {
	return row.MatchesSearch(searchText) && filter.Matches(row.Label)
}
