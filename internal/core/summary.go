package core

import "sort"

// CategoryShare is an amount aggregated by category, with its share of
// the overall total.
type CategoryShare struct {
	Category Category
	Amount   float64
	Percent  float64
}

// Summary is a compact dashboard aggregate over a list of expenses.
type Summary struct {
	Total      float64
	Count      int
	ByCategory []CategoryShare
}

// Summarize computes the total and the per-category breakdown, largest
// category first. Percentages are shares of the total; with an empty
// input everything is zero.
func Summarize(expenses []Expense) Summary {
	s := Summary{Count: len(expenses)}
	byCat := make(map[Category]float64)
	for _, e := range expenses {
		s.Total += e.Amount
		byCat[e.Category] += e.Amount
	}
	for cat, amount := range byCat {
		share := CategoryShare{Category: cat, Amount: amount}
		if s.Total > 0 {
			share.Percent = amount / s.Total * 100
		}
		s.ByCategory = append(s.ByCategory, share)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount != s.ByCategory[j].Amount {
			return s.ByCategory[i].Amount > s.ByCategory[j].Amount
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}

// Recent returns the first n expenses in backend order. The backend
// already sorts newest first, so no client-side re-sorting happens.
func Recent(expenses []Expense, n int) []Expense {
	if n > len(expenses) {
		n = len(expenses)
	}
	if n < 0 {
		n = 0
	}
	return expenses[:n]
}
