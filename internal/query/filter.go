// Package query turns a user-chosen filter into exactly one backend
// query shape. The backend exposes several non-orthogonal list
// endpoints and no single one handles the general case, so the mapping
// lives here, in one place.
package query

import (
	"time"

	"spendtrack/internal/core"
)

// Dimension is the mutually exclusive way the expense list is
// narrowed. Exactly one is active at a time.
type Dimension string

const (
	DimensionDate          Dimension = "date"
	DimensionDateRange     Dimension = "dateRange"
	DimensionCategory      Dimension = "category"
	DimensionCategoryRange Dimension = "categoryDate"
)

// Filters is the user-facing filter state. Zero dates mean "not set".
type Filters struct {
	Dimension Dimension
	Date      core.Date
	StartDate core.Date
	EndDate   core.Date
	Category  core.Category
}

// NewFilters returns the default filter state: single date, today,
// category "All".
func NewFilters(now time.Time) Filters {
	return Filters{
		Dimension: DimensionDate,
		Date:      core.Today(now),
		Category:  core.CategoryAll,
	}
}

// SetDimension switches the active dimension and resets every field
// not meaningful to it. Stale values must never survive a switch, or
// they would silently satisfy a different priority rule than the one
// the user picked.
func (f *Filters) SetDimension(d Dimension, now time.Time) {
	today := core.Today(now)
	*f = Filters{Dimension: d}

	switch d {
	case DimensionDate:
		f.Date = today
	case DimensionDateRange:
		f.StartDate = today
		f.EndDate = today
	case DimensionCategory:
		f.Date = today
		f.Category = core.CategoryAll
	case DimensionCategoryRange:
		f.StartDate = today
		f.EndDate = today
		f.Category = core.CategoryAll
	}
}

// Applied projects the filters down to the fields the active dimension
// actually submits, with the "All" sentinel dropped. This mirrors what
// a filter form sends on apply.
func (f Filters) Applied() Filters {
	out := Filters{Dimension: f.Dimension}
	switch f.Dimension {
	case DimensionDate:
		out.Date = f.Date
	case DimensionDateRange:
		out.StartDate = f.StartDate
		out.EndDate = f.EndDate
	case DimensionCategory:
		out.Date = f.Date
		if f.Category.Narrows() {
			out.Category = f.Category
		}
	case DimensionCategoryRange:
		out.StartDate = f.StartDate
		out.EndDate = f.EndDate
		if f.Category.Narrows() {
			out.Category = f.Category
		}
	}
	return out
}
