package core

import "testing"

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		{ID: "1", Amount: 60, Category: CategoryFood},
		{ID: "2", Amount: 30, Category: CategoryTravel},
		{ID: "3", Amount: 10, Category: CategoryFood},
	}

	s := Summarize(expenses)
	if s.Total != 100 {
		t.Fatalf("total = %v", s.Total)
	}
	if s.Count != 3 {
		t.Fatalf("count = %d", s.Count)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("categories = %d", len(s.ByCategory))
	}
	// Largest category first
	if s.ByCategory[0].Category != CategoryFood || s.ByCategory[0].Amount != 70 {
		t.Fatalf("first share = %+v", s.ByCategory[0])
	}
	if s.ByCategory[0].Percent != 70 {
		t.Fatalf("percent = %v", s.ByCategory[0].Percent)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Count != 0 || len(s.ByCategory) != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestRecent(t *testing.T) {
	expenses := []Expense{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	got := Recent(expenses, 2)
	if len(got) != 2 || got[0].ID != "1" {
		t.Fatalf("recent = %+v", got)
	}
	if len(Recent(expenses, 10)) != 3 {
		t.Fatalf("n beyond length should clamp")
	}
	if len(Recent(expenses, -1)) != 0 {
		t.Fatalf("negative n should be empty")
	}
}
