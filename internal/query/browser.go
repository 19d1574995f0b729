package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// Lister is the slice of the API client the browser fetches through.
type Lister interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	ExpensesByDate(ctx context.Context, date core.Date) ([]core.Expense, error)
	ExpensesByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
	ExpensesByCategory(ctx context.Context, category core.Category, date core.Date) ([]core.Expense, error)
	ExpensesByCategoryAndDateRange(ctx context.Context, category core.Category, start, end core.Date) ([]core.Expense, error)
}

// ResultCache persists the last successful result per query, so a
// transport failure can still show something.
type ResultCache interface {
	PutResult(ctx context.Context, fingerprint string, expenses []core.Expense) error
	Result(ctx context.Context, fingerprint string) ([]core.Expense, time.Time, bool, error)
}

// ErrSuperseded marks a response that lost the race against a newer
// filter application. The result was discarded, never displayed.
var ErrSuperseded = errors.New("superseded by a newer query")

// QueryError is a transport failure during an expense fetch. Callers
// keep showing the previous list; nothing is cleared implicitly.
type QueryError struct {
	Query Query
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("fetch %s expenses: %v", e.Query.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Browser applies filters and maintains the displayed expense list.
// Each application gets a monotonic generation number; a completion
// whose generation is older than the newest published one is dropped,
// so concurrent applications can never clobber a fresher result.
type Browser struct {
	lister Lister
	cache  ResultCache

	mu        sync.Mutex
	nextGen   uint64
	published uint64
	current   []core.Expense
}

// NewBrowser creates a browser; cache may be nil.
func NewBrowser(lister Lister, cache ResultCache) *Browser {
	return &Browser{lister: lister, cache: cache}
}

// Apply resolves the filters, fetches from the chosen endpoint and
// publishes the result. The list comes back exactly as the backend
// sent it. On failure the retained list is returned together with a
// *QueryError; on a lost race the error is ErrSuperseded.
func (b *Browser) Apply(ctx context.Context, f Filters) ([]core.Expense, error) {
	q := Resolve(f)

	b.mu.Lock()
	b.nextGen++
	gen := b.nextGen
	b.mu.Unlock()

	items, err := b.fetch(ctx, q)

	b.mu.Lock()
	if err != nil {
		retained := copyExpenses(b.current)
		b.mu.Unlock()
		return retained, &QueryError{Query: q, Err: err}
	}
	if gen < b.published {
		b.mu.Unlock()
		return nil, ErrSuperseded
	}
	b.published = gen
	b.current = items
	b.mu.Unlock()

	if b.cache != nil {
		if err := b.cache.PutResult(ctx, q.Fingerprint(), items); err != nil {
			slog.WarnContext(ctx, "Failed to cache query result",
				log.FieldComponent, log.ComponentQuery,
				log.FieldFingerprint, q.Fingerprint(), log.FieldError, err)
		}
	}
	return copyExpenses(items), nil
}

// Current returns the list as last published.
func (b *Browser) Current() []core.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyExpenses(b.current)
}

// Cached returns the locally cached result for the filters, if one
// exists. Used as an offline fallback after Apply fails; it never
// substitutes for a successful fetch.
func (b *Browser) Cached(ctx context.Context, f Filters) ([]core.Expense, time.Time, bool) {
	if b.cache == nil {
		return nil, time.Time{}, false
	}
	items, fetchedAt, ok, err := b.cache.Result(ctx, Resolve(f).Fingerprint())
	if err != nil {
		slog.WarnContext(ctx, "Failed to read cached query result",
			log.FieldComponent, log.ComponentQuery, log.FieldError, err)
		return nil, time.Time{}, false
	}
	return items, fetchedAt, ok
}

func (b *Browser) fetch(ctx context.Context, q Query) ([]core.Expense, error) {
	switch q.Kind {
	case KindByCategoryAndRange:
		return b.lister.ExpensesByCategoryAndDateRange(ctx, q.Category, q.StartDate, q.EndDate)
	case KindByRange:
		return b.lister.ExpensesByDateRange(ctx, q.StartDate, q.EndDate)
	case KindByCategory:
		return b.lister.ExpensesByCategory(ctx, q.Category, q.Date)
	case KindByDate:
		return b.lister.ExpensesByDate(ctx, q.Date)
	default:
		return b.lister.ListExpenses(ctx)
	}
}

func copyExpenses(in []core.Expense) []core.Expense {
	if in == nil {
		return nil
	}
	out := make([]core.Expense, len(in))
	copy(out, in)
	return out
}
