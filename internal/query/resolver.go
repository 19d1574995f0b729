package query

import (
	"strings"

	"spendtrack/internal/core"
)

// Kind names the backend endpoint a query resolves to.
type Kind string

const (
	KindAll                Kind = "all"
	KindByDate             Kind = "byDate"
	KindByRange            Kind = "byDateBetween"
	KindByCategory         Kind = "byCategory"
	KindByCategoryAndRange Kind = "byCategoryAndDateRange"
)

// Query is a fully resolved request shape: one Kind plus exactly the
// parameters that endpoint takes.
type Query struct {
	Kind      Kind
	Date      core.Date
	StartDate core.Date
	EndDate   core.Date
	Category  core.Category
}

// Resolve maps filter values onto exactly one endpoint. Priority order
// is fixed, first match wins:
//
//  1. category + startDate + endDate
//  2. startDate + endDate
//  3. category + date
//  4. date
//  5. nothing recognized: all expenses
//
// A category of "All" is treated as absent at every level.
func Resolve(f Filters) Query {
	f = f.Applied()
	hasCategory := f.Category.Narrows()
	hasRange := !f.StartDate.IsZero() && !f.EndDate.IsZero()
	hasDate := !f.Date.IsZero()

	switch {
	case hasCategory && hasRange:
		return Query{Kind: KindByCategoryAndRange, Category: f.Category, StartDate: f.StartDate, EndDate: f.EndDate}
	case hasRange:
		return Query{Kind: KindByRange, StartDate: f.StartDate, EndDate: f.EndDate}
	case hasCategory && hasDate:
		return Query{Kind: KindByCategory, Category: f.Category, Date: f.Date}
	case hasDate:
		return Query{Kind: KindByDate, Date: f.Date}
	default:
		return Query{Kind: KindAll}
	}
}

// Fingerprint is a stable cache key for the resolved query.
func (q Query) Fingerprint() string {
	parts := []string{string(q.Kind)}
	if q.Category.Narrows() {
		parts = append(parts, "category="+string(q.Category))
	}
	if !q.Date.IsZero() {
		parts = append(parts, "date="+q.Date.String())
	}
	if !q.StartDate.IsZero() {
		parts = append(parts, "start="+q.StartDate.String())
	}
	if !q.EndDate.IsZero() {
		parts = append(parts, "end="+q.EndDate.String())
	}
	return strings.Join(parts, "|")
}
