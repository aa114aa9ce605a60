package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arts-recruitment/dashboard/internal/domain/shared"
)

func TestIsVisible_Search(t *testing.T) {
	john := Row{Name: "John Smith", ID: "S001"}
	jane := Row{Name: "Jane Doe", ID: "D002"}

	assert.True(t, IsVisible(john, "smi", FilterNone))
	assert.False(t, IsVisible(jane, "smi", FilterNone))
	assert.True(t, IsVisible(john, "SMI", FilterNone), "case-insensitive")
	assert.True(t, IsVisible(jane, "d00", FilterNone), "matches ID")
	assert.True(t, IsVisible(jane, "", FilterNone))
}

func TestIsVisible_ClassificationFilter(t *testing.T) {
	rows := []Row{
		{Name: "A", ID: "1", Label: "hardcore band nerd"},
		{Name: "B", ID: "2", Label: LabelLateStarter},
		{Name: "C", ID: "3", Label: LabelWithdrew},
		{Name: "D", ID: "4"},
	}

	visible := func(f ClassificationFilter) []string {
		var ids []string
		for _, r := range rows {
			if IsVisible(r, "", f) {
				ids = append(ids, r.ID)
			}
		}
		return ids
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, visible(FilterNone))
	assert.Equal(t, []string{"1"}, visible(FilterNerd))
	assert.Equal(t, []string{"2"}, visible(FilterLate))
	assert.Equal(t, []string{"3"}, visible(FilterWithdrew))
}

func TestIsVisible_BothPredicates(t *testing.T) {
	row := Row{Name: "John Smith", ID: "S001", Label: LabelWithdrew}

	assert.True(t, IsVisible(row, "john", FilterWithdrew))
	assert.False(t, IsVisible(row, "jane", FilterWithdrew))
	assert.False(t, IsVisible(row, "john", FilterNerd))
}

func TestFilterMatches_LabelCase(t *testing.T) {
	assert.True(t, FilterNerd.Matches("Hardcore Choir Nerd"))
	assert.True(t, FilterLate.Matches("LATE STARTER"))
	assert.False(t, FilterLate.Matches("late"))
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]ClassificationFilter{
		"":         FilterNone,
		"all":      FilterNone,
		"nerd":     FilterNerd,
		" Late ":   FilterLate,
		"WITHDREW": FilterWithdrew,
	} {
		got, err := ParseFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFilter("dropouts")
	assert.ErrorIs(t, err, shared.ErrInvalidFilter)
	assert.True(t, shared.IsValidation(err))
}
