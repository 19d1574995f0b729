package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCategoryNarrows(t *testing.T) {
	cases := []struct {
		c    Category
		want bool
	}{
		{CategoryFood, true},
		{CategoryOther, true},
		{CategoryAll, false},
		{"", false},
	}
	for _, tc := range cases {
		if got := tc.c.Narrows(); got != tc.want {
			t.Fatalf("%q Narrows() = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	if len(Categories()) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(Categories()))
	}
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("%q should be valid", c)
		}
	}
	// The sentinel is not a real category
	if CategoryAll.Valid() {
		t.Fatalf("All should not be a valid category")
	}
	if Category("Snacks").Valid() {
		t.Fatalf("unknown category should not be valid")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("round trip failed: %q", d.String())
	}

	for _, bad := range []string{"", "09/03/2025", "2025-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var e Expense
	payload := `{"id":"7","amount":4.2,"category":"Food","date":"2025-01-15","description":"coffee"}`
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Date.String() != "2025-01-15" {
		t.Fatalf("date = %q", e.Date.String())
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) == "" || !json.Valid(out) {
		t.Fatalf("invalid marshal output: %s", out)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
	if got := Today(now).String(); got != "2025-06-30" {
		t.Fatalf("Today = %q", got)
	}
}

func TestExpenseFormValidate(t *testing.T) {
	good := ExpenseForm{
		Amount:      12.5,
		Category:    CategoryFood,
		Date:        NewDate(2025, 1, 1),
		Description: "lunch",
		UserID:      "u1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseForm{
		{Amount: 0, Category: CategoryFood, Date: NewDate(2025, 1, 1), Description: "x"},
		{Amount: -1, Category: CategoryFood, Date: NewDate(2025, 1, 1), Description: "x"},
		{Amount: 1, Category: CategoryAll, Date: NewDate(2025, 1, 1), Description: "x"},
		{Amount: 1, Category: "Nope", Date: NewDate(2025, 1, 1), Description: "x"},
		{Amount: 1, Category: CategoryFood, Date: Date{}, Description: "x"},
		{Amount: 1, Category: CategoryFood, Date: NewDate(2025, 1, 1), Description: "   "},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
