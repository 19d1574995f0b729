package query

import (
	"testing"
	"time"

	"spendtrack/internal/core"
)

func TestSetDimensionResets(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	today := "2025-05-20"

	t.Run("range to single date discards range", func(t *testing.T) {
		f := NewFilters(now)
		f.SetDimension(DimensionDateRange, now)
		f.StartDate = core.NewDate(2025, 1, 1)
		f.EndDate = core.NewDate(2025, 1, 31)

		f.SetDimension(DimensionDate, now)

		if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
			t.Fatalf("range fields must not survive the switch: %+v", f)
		}
		if f.Date.String() != today {
			t.Fatalf("date should default to today, got %s", f.Date)
		}
		// The stale range must not reroute the next query either.
		if q := Resolve(f); q.Kind != KindByDate {
			t.Fatalf("resolved %s, want %s", q.Kind, KindByDate)
		}
	})

	t.Run("category switch resets to All", func(t *testing.T) {
		f := NewFilters(now)
		f.SetDimension(DimensionCategory, now)
		f.Category = core.CategoryFood

		f.SetDimension(DimensionCategoryRange, now)

		if f.Category != core.CategoryAll {
			t.Fatalf("category should reset to All, got %s", f.Category)
		}
		if f.StartDate.String() != today || f.EndDate.String() != today {
			t.Fatalf("range should default to today: %+v", f)
		}
		if !f.Date.IsZero() {
			t.Fatalf("single date should be cleared: %+v", f)
		}
	})

	t.Run("single date to category keeps a date default", func(t *testing.T) {
		f := NewFilters(now)
		f.SetDimension(DimensionCategory, now)
		if f.Date.String() != today || f.Category != core.CategoryAll {
			t.Fatalf("unexpected defaults: %+v", f)
		}
	})
}

func TestAppliedProjectsDimension(t *testing.T) {
	f := Filters{
		Dimension: DimensionDate,
		Date:      core.NewDate(2025, 2, 2),
		StartDate: core.NewDate(2025, 1, 1), // stale
		EndDate:   core.NewDate(2025, 1, 31),
		Category:  core.CategoryFood, // stale
	}
	got := f.Applied()
	if !got.StartDate.IsZero() || !got.EndDate.IsZero() || got.Category != "" {
		t.Fatalf("applied filters leaked stale fields: %+v", got)
	}
	if got.Date.String() != "2025-02-02" {
		t.Fatalf("date = %s", got.Date)
	}
}
