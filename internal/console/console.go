// Package console holds the view-side logic of the event console: windowed
// page numbers, sort toggling, display formatting and the client-side checks
// that run before a draft is sent to the API. None of it is trusted by the
// server; it exists for responsiveness only.
package console

import (
	"strings"

	"events-app/internal/models"
)

// PageItem is one slot of the pagination control: a page number or an
// ellipsis placeholder.
type PageItem struct {
	Number   int
	Ellipsis bool
}

func page(n int) PageItem { return PageItem{Number: n} }
func ellipsis() PageItem  { return PageItem{Ellipsis: true} }

// PageNumbers computes the bounded pagination window. Small totals show every
// page; larger ones always show the first and last page, the neighbors of the
// current page, and ellipses for the gaps.
func PageNumbers(current, totalPages int) []PageItem {
	if totalPages <= 4 {
		items := make([]PageItem, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			items = append(items, page(i))
		}
		return items
	}

	items := []PageItem{page(1)}
	switch {
	case current <= 3:
		items = append(items, page(2), page(3), page(4), ellipsis(), page(totalPages))
	case current >= totalPages-2:
		items = append(items, ellipsis(), page(totalPages-3), page(totalPages-2), page(totalPages-1), page(totalPages))
	default:
		items = append(items, ellipsis(), page(current-1), page(current), page(current+1), ellipsis(), page(totalPages))
	}
	return items
}

// SortState tracks the active sort column and direction of the list view.
type SortState struct {
	Column string
	Order  string
}

// Toggle applies a header click: the active column flips direction, a new
// column starts ascending. The caller resets to page 1 either way.
func (s SortState) Toggle(column string) SortState {
	if s.Column == column {
		if s.Order == "ASC" {
			return SortState{Column: column, Order: "DESC"}
		}
		return SortState{Column: column, Order: "ASC"}
	}
	return SortState{Column: column, Order: "ASC"}
}

// FormatDate turns the API's YYYY-MM-DD into the DD-MM-YYYY display form.
func FormatDate(dateStr string) string {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return dateStr
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

// Draft mirrors the form fields before submission.
type Draft struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	ImagePath   string
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true,
}

// ValidateDraft duplicates a subset of the server checks for fast feedback.
// Returns field name to message; empty map means the draft may be submitted.
func ValidateDraft(d Draft) map[string]string {
	errors := map[string]string{}
	if d.Name == "" {
		errors["name"] = "*Event name is required"
	}
	if d.Description == "" {
		errors["description"] = "*Description is required"
	}
	if d.StartDate == "" {
		errors["startDate"] = "*Start date is required"
	}
	if d.EndDate == "" {
		errors["endDate"] = "*End date is required"
	}

	if d.StartDate != "" && d.EndDate != "" {
		start, errStart := models.ParseDate(d.StartDate)
		end, errEnd := models.ParseDate(d.EndDate)
		if errStart == nil && errEnd == nil && end.Before(start.Time) {
			errors["endDate"] = "*End date must be later than Start date"
		}
	}

	if d.ImagePath != "" {
		dot := strings.LastIndex(d.ImagePath, ".")
		if dot < 0 || !imageExtensions[strings.ToLower(d.ImagePath[dot:])] {
			errors["image"] = "Only image files (jpg, png, gif, etc.) are allowed."
		}
	}
	return errors
}
