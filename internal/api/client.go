// Package api is the HTTP client for the expense-tracker backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// TokenSource supplies the current bearer credential, if any. The
// credential is attached regardless of validity; expiry enforcement is
// the backend's job, paired with the unauthorized hook below.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the backend REST API. Every response with status 401
// additionally fires the unauthorized hook, so a single coordinator
// can tear the session down no matter which call saw the status.
type Client struct {
	base           *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8081/api". tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", base.Scheme)
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: log.NewTransport(nil),
		},
		tokens: tokens,
	}, nil
}

// SetTokenSource installs the credential supplier after construction.
// The session manager and the client reference each other, so one side
// has to be wired late.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// OnUnauthorized registers the hook fired whenever any response comes
// back 401. The client only raises the signal; deciding what to do
// with the session belongs to the caller.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// AuthResponse is the body of successful login and register calls.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, false); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account and returns a freshly issued token.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &resp, false); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// ListExpenses returns every expense, in backend order.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	var out core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, nil, &out, true); err != nil {
		return core.Expense{}, err
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, form core.ExpenseForm) (core.Expense, error) {
	var out core.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", nil, form, &out, true); err != nil {
		return core.Expense{}, err
	}
	return out, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, form core.ExpenseForm) (core.Expense, error) {
	var out core.Expense
	if err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), nil, form, &out, true); err != nil {
		return core.Expense{}, err
	}
	return out, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, nil, true)
}

// ExpensesByDate returns the expenses for a single day.
func (c *Client) ExpensesByDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	q := url.Values{"date": {date.String()}}
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/byDate", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpensesByDateRange returns the expenses between two days inclusive.
func (c *Client) ExpensesByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	q := url.Values{"startDate": {start.String()}, "endDate": {end.String()}}
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/byDateBetween", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpensesByCategory returns a category's expenses on a single day.
// The parameter is capitalized "Category" on the wire.
func (c *Client) ExpensesByCategory(ctx context.Context, category core.Category, date core.Date) ([]core.Expense, error) {
	q := url.Values{"Category": {string(category)}, "date": {date.String()}}
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/byCategory", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpensesByCategoryAndDateRange returns a category's expenses within a
// range. The backend spells the start parameter "startdate", lowercase.
func (c *Client) ExpensesByCategoryAndDateRange(ctx context.Context, category core.Category, start, end core.Date) ([]core.Expense, error) {
	q := url.Values{
		"Category":  {string(category)},
		"startdate": {start.String()},
		"endDate":   {end.String()},
	}
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/byCategoryAndDateRange", q, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authed && c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		slog.WarnContext(ctx, "Unauthorized response",
			log.FieldMethod, method,
			log.FieldPath, path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode >= 400 {
		return newStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
