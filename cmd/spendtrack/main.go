package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/api"
	"spendtrack/internal/cli"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/query"
	"spendtrack/internal/session"
)

const usage = `Usage: spendtrack <command> [flags]

Commands:
  login     -username -password
  register  -username -email -password
  logout
  whoami
  list      [-date YYYY-MM-DD] [-from YYYY-MM-DD -to YYYY-MM-DD] [-category NAME]
  add       -amount N -category NAME -description TEXT [-date YYYY-MM-DD]
  update    -id ID [-amount N] [-category NAME] [-description TEXT] [-date YYYY-MM-DD]
  delete    -id ID
  summary   [-months N]
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if err := run(os.Args[1:], logger, os.Stdout); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired client pieces each command needs.
type app struct {
	client  *api.Client
	session *session.Manager
	browser *query.Browser
	recent  int
	out     io.Writer
}

func run(args []string, logger *log.Logger, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return fmt.Errorf("missing command")
	}

	cfg := cli.LoadAndValidateConfig(logger)
	st := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close local store", log.FieldError, err)
		}
	}()

	client, err := api.New(cfg.APIBaseURL, nil, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("configure API client: %w", err)
	}

	mgr := session.NewManager(client, st)
	client.SetTokenSource(mgr)
	client.OnUnauthorized(mgr.HandleUnauthorized)
	mgr.OnNavigate(func(r session.Route) {
		if r == session.RouteLogin {
			fmt.Fprintln(out, "Session ended. Run 'spendtrack login' to sign in again.")
		}
	})

	ctx := context.Background()
	mgr.RestoreFromStorage(ctx)

	a := &app{
		client:  client,
		session: mgr,
		browser: query.NewBrowser(client, st),
		recent:  cfg.RecentCount,
		out:     out,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami()
	case "list":
		return a.cmdList(ctx, rest)
	case "add":
		return a.cmdAdd(ctx, rest)
	case "update":
		return a.cmdUpdate(ctx, rest)
	case "delete":
		return a.cmdDelete(ctx, rest)
	case "summary":
		return a.cmdSummary(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// requireAuth is the access gate every protected command passes first.
func (a *app) requireAuth() error {
	if !a.session.IsAuthorized() {
		return session.ErrNotAuthorized
	}
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -username and -password")
	}

	if err := a.session.Login(ctx, *username, *password); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "Logged in as %s\n", snap.Identity.Username)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "Username")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *email == "" || *password == "" {
		return fmt.Errorf("register requires -username, -email and -password")
	}

	if err := a.session.Register(ctx, *username, *email, *password); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", snap.Identity.Username)
	return nil
}

func (a *app) cmdLogout() error {
	a.session.Logout()
	return nil
}

func (a *app) cmdWhoami() error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	fmt.Fprintf(a.out, "Username: %s\nEmail: %s\nUser ID: %s\n",
		snap.Identity.Username, snap.Identity.Email, snap.Identity.ID)
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	date := fs.String("date", "", "Single day (YYYY-MM-DD)")
	from := fs.String("from", "", "Range start (YYYY-MM-DD)")
	to := fs.String("to", "", "Range end (YYYY-MM-DD)")
	category := fs.String("category", "", "Category name, or All")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filters, err := buildFilters(*date, *from, *to, *category, time.Now())
	if err != nil {
		return err
	}

	expenses, err := a.browser.Apply(ctx, filters)
	if err != nil {
		// Keep showing something useful: fall back to the locally
		// cached result for the same query, when there is one.
		if cached, fetchedAt, ok := a.browser.Cached(ctx, filters); ok {
			fmt.Fprintf(a.out, "Backend unreachable (%v); showing cached result from %s\n",
				err, fetchedAt.Local().Format(time.RFC822))
			a.printExpenses(cached)
			return nil
		}
		return err
	}
	a.printExpenses(expenses)
	return nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	amount := fs.String("amount", "", "Amount, e.g. 12.50")
	category := fs.String("category", "", "Category name")
	date := fs.String("date", "", "Day (YYYY-MM-DD), defaults to today")
	description := fs.String("description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	form, err := a.buildForm(*amount, *category, *date, *description)
	if err != nil {
		return err
	}

	created, err := a.client.CreateExpense(ctx, form)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	fmt.Fprintf(a.out, "Added expense %s: %s %s on %s\n",
		created.ID, core.FormatAmount(created.Amount), created.Category, created.Date)
	return nil
}

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.String("id", "", "Expense ID")
	amount := fs.String("amount", "", "Amount, e.g. 12.50")
	category := fs.String("category", "", "Category name")
	date := fs.String("date", "", "Day (YYYY-MM-DD)")
	description := fs.String("description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("update requires -id")
	}

	existing, err := a.client.GetExpense(ctx, *id)
	if err != nil {
		return fmt.Errorf("load expense %s: %w", *id, err)
	}

	form := core.ExpenseForm{
		Amount:      existing.Amount,
		Category:    existing.Category,
		Date:        existing.Date,
		Description: existing.Description,
		UserID:      a.session.Snapshot().Identity.ID,
	}
	if *amount != "" {
		if form.Amount, err = core.ParseAmount(*amount); err != nil {
			return err
		}
	}
	if *category != "" {
		form.Category = core.Category(*category)
	}
	if *date != "" {
		if form.Date, err = core.ParseDate(*date); err != nil {
			return err
		}
	}
	if *description != "" {
		form.Description = *description
	}
	if err := form.Validate(); err != nil {
		return err
	}

	updated, err := a.client.UpdateExpense(ctx, *id, form)
	if err != nil {
		return fmt.Errorf("update expense %s: %w", *id, err)
	}
	fmt.Fprintf(a.out, "Updated expense %s\n", updated.ID)
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "Expense ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("delete requires -id")
	}

	if err := a.client.DeleteExpense(ctx, *id); err != nil {
		return fmt.Errorf("delete expense %s: %w", *id, err)
	}
	fmt.Fprintf(a.out, "Deleted expense %s\n", *id)
	return nil
}

func (a *app) cmdSummary(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	months := fs.Int("months", 0, "Also show totals for the last N months")
	if err := fs.Parse(args); err != nil {
		return err
	}

	expenses, err := a.client.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("fetch expenses: %w", err)
	}

	s := core.Summarize(expenses)
	fmt.Fprintf(a.out, "Total: %s across %d expenses\n", core.FormatAmount(s.Total), s.Count)
	for _, share := range s.ByCategory {
		fmt.Fprintf(a.out, "  %-15s %10s  %5.1f%%\n",
			share.Category, core.FormatAmount(share.Amount), share.Percent)
	}

	recent := core.Recent(expenses, a.recent)
	if len(recent) > 0 {
		fmt.Fprintln(a.out, "\nRecent:")
		a.printExpenses(recent)
	}

	if *months > 0 {
		totals, err := a.monthlyTotals(ctx, *months, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "\nBy month:")
		for _, mt := range totals {
			fmt.Fprintf(a.out, "  %04d-%02d  %10s  (%d expenses)\n",
				mt.Year, mt.Month, core.FormatAmount(mt.Total), mt.Count)
		}
	}
	return nil
}

// buildForm assembles a create payload from add flags. The date
// defaults to today and the user ID comes from the session identity.
func (a *app) buildForm(amount, category, date, description string) (core.ExpenseForm, error) {
	form := core.ExpenseForm{
		Category:    core.Category(category),
		Description: description,
		UserID:      a.session.Snapshot().Identity.ID,
	}

	var err error
	if form.Amount, err = core.ParseAmount(amount); err != nil {
		return core.ExpenseForm{}, err
	}
	if date == "" {
		form.Date = core.Today(time.Now())
	} else if form.Date, err = core.ParseDate(date); err != nil {
		return core.ExpenseForm{}, err
	}
	if err := form.Validate(); err != nil {
		return core.ExpenseForm{}, err
	}
	return form, nil
}

type monthTotal struct {
	Year  int
	Month int
	Total float64
	Count int
}

// monthlyTotals fetches the last n calendar months concurrently, one
// range query per month, newest first.
func (a *app) monthlyTotals(ctx context.Context, n int, now time.Time) ([]monthTotal, error) {
	totals := make([]monthTotal, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
			start := core.NewDate(first.Year(), int(first.Month()), 1)
			end := core.Date{Time: first.AddDate(0, 1, -1)}

			items, err := a.client.ExpensesByDateRange(gctx, start, end)
			if err != nil {
				return fmt.Errorf("fetch %04d-%02d: %w", first.Year(), int(first.Month()), err)
			}
			s := core.Summarize(items)
			totals[i] = monthTotal{
				Year:  first.Year(),
				Month: int(first.Month()),
				Total: s.Total,
				Count: s.Count,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return totals, nil
}

// buildFilters maps list flags onto a filter state. Flag combinations
// mirror the four filter dimensions; no flags at all means the
// unfiltered list.
func buildFilters(date, from, to, category string, now time.Time) (query.Filters, error) {
	if (from == "") != (to == "") {
		return query.Filters{}, fmt.Errorf("-from and -to must be used together")
	}
	hasRange := from != "" && to != ""
	if hasRange && date != "" {
		return query.Filters{}, fmt.Errorf("-date cannot be combined with -from/-to")
	}

	f := query.Filters{Dimension: query.DimensionDate}
	var err error

	switch {
	case category != "" && hasRange:
		f.Dimension = query.DimensionCategoryRange
		f.Category = core.Category(category)
		if f.StartDate, err = core.ParseDate(from); err != nil {
			return query.Filters{}, fmt.Errorf("invalid -from: %w", err)
		}
		if f.EndDate, err = core.ParseDate(to); err != nil {
			return query.Filters{}, fmt.Errorf("invalid -to: %w", err)
		}
	case hasRange:
		f.Dimension = query.DimensionDateRange
		if f.StartDate, err = core.ParseDate(from); err != nil {
			return query.Filters{}, fmt.Errorf("invalid -from: %w", err)
		}
		if f.EndDate, err = core.ParseDate(to); err != nil {
			return query.Filters{}, fmt.Errorf("invalid -to: %w", err)
		}
	case category != "":
		f.Dimension = query.DimensionCategory
		f.Category = core.Category(category)
		if date != "" {
			if f.Date, err = core.ParseDate(date); err != nil {
				return query.Filters{}, fmt.Errorf("invalid -date: %w", err)
			}
		} else {
			f.Date = core.Today(now)
		}
	case date != "":
		f.Dimension = query.DimensionDate
		if f.Date, err = core.ParseDate(date); err != nil {
			return query.Filters{}, fmt.Errorf("invalid -date: %w", err)
		}
	}

	if f.Category != "" && f.Category != core.CategoryAll && !f.Category.Valid() {
		return query.Filters{}, fmt.Errorf("unknown category %q", category)
	}
	return f, nil
}

func (a *app) printExpenses(expenses []core.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(a.out, "No expenses found.")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Category, core.FormatAmount(e.Amount), e.Description)
	}
	w.Flush()
}
