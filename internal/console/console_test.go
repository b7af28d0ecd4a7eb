package console_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"events-app/internal/console"
)

func numbers(items []console.PageItem) []int {
	out := make([]int, len(items))
	for i, item := range items {
		if item.Ellipsis {
			out[i] = -1
		} else {
			out[i] = item.Number
		}
	}
	return out
}

func TestPageNumbersSmallTotals(t *testing.T) {
	assert.Empty(t, console.PageNumbers(1, 0))
	assert.Equal(t, []int{1}, numbers(console.PageNumbers(1, 1)))
	assert.Equal(t, []int{1, 2, 3, 4}, numbers(console.PageNumbers(3, 4)))
}

func TestPageNumbersNearStart(t *testing.T) {
	for current := 1; current <= 3; current++ {
		got := numbers(console.PageNumbers(current, 10))
		assert.Equal(t, []int{1, 2, 3, 4, -1, 10}, got, "current=%d", current)
	}
}

func TestPageNumbersNearEnd(t *testing.T) {
	for current := 8; current <= 10; current++ {
		got := numbers(console.PageNumbers(current, 10))
		assert.Equal(t, []int{1, -1, 7, 8, 9, 10}, got, "current=%d", current)
	}
}

func TestPageNumbersMiddle(t *testing.T) {
	got := numbers(console.PageNumbers(5, 12))
	assert.Equal(t, []int{1, -1, 4, 5, 6, -1, 12}, got)
}

func TestSortToggle(t *testing.T) {
	state := console.SortState{Column: "id", Order: "DESC"}

	state = state.Toggle("name")
	assert.Equal(t, console.SortState{Column: "name", Order: "ASC"}, state)

	state = state.Toggle("name")
	assert.Equal(t, console.SortState{Column: "name", Order: "DESC"}, state)

	state = state.Toggle("name")
	assert.Equal(t, console.SortState{Column: "name", Order: "ASC"}, state)

	state = state.Toggle("startDate")
	assert.Equal(t, console.SortState{Column: "startDate", Order: "ASC"}, state)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "25-12-2025", console.FormatDate("2025-12-25"))
	assert.Equal(t, "garbage", console.FormatDate("garbage"))
}

func TestValidateDraftRequiredFields(t *testing.T) {
	errs := console.ValidateDraft(console.Draft{})
	assert.Equal(t, "*Event name is required", errs["name"])
	assert.Equal(t, "*Description is required", errs["description"])
	assert.Equal(t, "*Start date is required", errs["startDate"])
	assert.Equal(t, "*End date is required", errs["endDate"])
}

func TestValidateDraftDateOrder(t *testing.T) {
	errs := console.ValidateDraft(console.Draft{
		Name:        "Backwards",
		Description: "ends before it starts",
		StartDate:   "2025-06-10",
		EndDate:     "2025-06-01",
	})
	assert.Equal(t, map[string]string{"endDate": "*End date must be later than Start date"}, errs)
}

func TestValidateDraftImageExtension(t *testing.T) {
	draft := console.Draft{
		Name:        "Gallery Night",
		Description: "with a poster",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
	}

	draft.ImagePath = "poster.PNG"
	assert.Empty(t, console.ValidateDraft(draft))

	draft.ImagePath = "notes.txt"
	errs := console.ValidateDraft(draft)
	assert.Contains(t, errs["image"], "Only image files")

	draft.ImagePath = "no-extension"
	errs = console.ValidateDraft(draft)
	assert.Contains(t, errs["image"], "Only image files")
}

func TestValidateDraftAcceptsCompleteDraft(t *testing.T) {
	errs := console.ValidateDraft(console.Draft{
		Name:        "Summer Fest",
		Description: "three days of music",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		ImagePath:   "poster.jpg",
	})
	assert.Empty(t, errs)
}
