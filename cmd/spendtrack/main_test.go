package main

import (
	"strings"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

func TestBuildFilters(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     string
		from     string
		to       string
		category string
		wantKind query.Kind
		wantErr  string
	}{
		{
			name:     "no flags lists everything",
			wantKind: query.KindAll,
		},
		{
			name:     "date only",
			date:     "2025-03-01",
			wantKind: query.KindByDate,
		},
		{
			name:     "range only",
			from:     "2025-03-01",
			to:       "2025-03-31",
			wantKind: query.KindByRange,
		},
		{
			name:     "category defaults to today",
			category: "Food",
			wantKind: query.KindByCategory,
		},
		{
			name:     "category with explicit date",
			date:     "2025-03-01",
			category: "Food",
			wantKind: query.KindByCategory,
		},
		{
			name:     "category with range",
			from:     "2025-03-01",
			to:       "2025-03-31",
			category: "Food",
			wantKind: query.KindByCategoryAndRange,
		},
		{
			name:     "the All category does not filter",
			category: "All",
			wantKind: query.KindByDate,
		},
		{
			name:    "from without to",
			from:    "2025-03-01",
			wantErr: "must be used together",
		},
		{
			name:    "to without from",
			to:      "2025-03-31",
			wantErr: "must be used together",
		},
		{
			name:    "date mixed with range",
			date:    "2025-03-01",
			from:    "2025-03-01",
			to:      "2025-03-31",
			wantErr: "cannot be combined",
		},
		{
			name:     "unknown category",
			category: "Groceries",
			wantErr:  "unknown category",
		},
		{
			name:    "unparseable date",
			date:    "03/01/2025",
			wantErr: "invalid -date",
		},
		{
			name:    "unparseable from",
			from:    "yesterday",
			to:      "2025-03-31",
			wantErr: "invalid -from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilters(tt.date, tt.from, tt.to, tt.category, now)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("buildFilters() = nil error, want %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildFilters() error = %v", err)
			}
			if got := query.Resolve(f); got.Kind != tt.wantKind {
				t.Errorf("resolved kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestBuildFiltersCategoryDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	f, err := buildFilters("", "", "", "Food", now)
	if err != nil {
		t.Fatalf("buildFilters() error = %v", err)
	}
	if f.Date.String() != "2025-03-15" {
		t.Errorf("Date = %s, want today", f.Date)
	}
	if f.Category != core.CategoryFood {
		t.Errorf("Category = %q", f.Category)
	}
}
